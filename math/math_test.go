package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec3(2, 4, 6)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}

	// Dot product
	dot := v1.Dot(v2)
	expectedDot := float32(32) // 1*4 + 2*5 + 3*6
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}

	// Cross product (Right x Up = Front in right-handed system)
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)

	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}

	// Check length is 1
	length := normalized.Length()
	if math32.Abs(length-1) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()

	// Check diagonal is 1
	for i := 0; i < 4; i++ {
		if m[i][i] != 1 {
			t.Errorf("Identity: expected diagonal to be 1, got %v", m[i][i])
		}
	}

	// Check non-diagonal is 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j && m[i][j] != 0 {
				t.Errorf("Identity: expected non-diagonal to be 0, got %v", m[i][j])
			}
		}
	}
}

func TestMat4Multiplication(t *testing.T) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	result := m1.Mul(m2)

	// Identity * Identity = Identity
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if result[i][j] != expected {
				t.Errorf("Mul: expected [%d][%d] = %v, got %v", i, j, expected, result[i][j])
			}
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	// Check translation components
	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}

	// Test transforming a point
	point := NewVec4(0, 0, 0, 1)
	result := point.MulMat(m)

	if result.ToVec3() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, result.ToVec3())
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4TRS(NewVec3(3, -2, 7), NewVec3(0.4, 1.2, -0.3), NewVec3(2, 2, 2))
	inv := m.Inverse()
	round := m.Mul(inv)

	// M * M^-1 should be identity within float tolerance
	identity := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math32.Abs(round[i][j]-identity[i][j]) > 0.001 {
				t.Errorf("Inverse: [%d][%d] expected %v, got %v", i, j, identity[i][j], round[i][j])
			}
		}
	}
}

func TestMat4TRSOrder(t *testing.T) {
	m := Mat4TRS(NewVec3(10, 0, 0), NewVec3(0, math32.Pi/2, 0), NewVec3(2, 2, 2))

	// The local origin lands exactly on the translation, regardless of
	// rotation and scale
	p := m.TransformPoint(Vec3Zero)
	if math32.Abs(p.X-10) > 0.001 || math32.Abs(p.Y) > 0.001 || math32.Abs(p.Z) > 0.001 {
		t.Errorf("TRS origin: expected (10,0,0), got %v", p)
	}

	// Local +X: scaled by 2, yawed 90 degrees onto -Z, then offset
	p = m.TransformPoint(Vec3Right)
	if math32.Abs(p.X-10) > 0.001 || math32.Abs(p.Y) > 0.001 || math32.Abs(p.Z+2) > 0.001 {
		t.Errorf("TRS +X: expected (10,0,-2), got %v", p)
	}
}

func TestMat4RotationMatchesQuaternion(t *testing.T) {
	euler := NewVec3(0.3, -0.7, 1.9)
	qm := QuaternionFromEuler(euler).ToMat4()
	m := Mat4Rotation(euler)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math32.Abs(m[i][j]-qm[i][j]) > 0.001 {
				t.Errorf("Rotation[%d][%d]: euler path %v, quaternion path %v", i, j, m[i][j], qm[i][j])
			}
		}
	}
}

func TestMat4InverseSingular(t *testing.T) {
	// A zero matrix has no inverse; identity is the documented fallback
	inv := Mat4Zero().Inverse()
	if inv != Mat4Identity() {
		t.Errorf("Inverse of singular matrix: expected identity, got %v", inv)
	}
}

func TestMat4TransformDirection(t *testing.T) {
	m := Mat4Translation(NewVec3(10, 20, 30))

	// Directions must ignore translation
	d := m.TransformDirection(Vec3Front)
	if d != Vec3Front {
		t.Errorf("TransformDirection: expected %v, got %v", Vec3Front, d)
	}

	// Points must not
	p := m.TransformPoint(Vec3Zero)
	if p != NewVec3(10, 20, 30) {
		t.Errorf("TransformPoint: expected (10,20,30), got %v", p)
	}
}

func TestQuaternionIdentity(t *testing.T) {
	q := QuaternionIdentity()

	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuaternionIdentity: expected (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degree rotation around Y axis
	q := QuaternionFromAxisAngle(Vec3Up, math32.Pi/2)

	// Rotate the X unit vector 90 degrees around Y should give Z
	result := q.RotateVector(Vec3Right)

	// Check that result is approximately -Z (due to coordinate system)
	tolerance := float32(0.001)
	if math32.Abs(result.X) > tolerance ||
		math32.Abs(result.Y) > tolerance ||
		math32.Abs(result.Z+1) > tolerance {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestMat4Perspective(t *testing.T) {
	fov := float32(math32.Pi / 4) // 45 degrees
	aspect := float32(16.0 / 9.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Mat4Perspective(fov, aspect, near, far)

	// Check aspect ratio affects the matrix
	if m[0][0] == 0 {
		t.Error("Perspective: expected non-zero X scale")
	}
	if m[1][1] == 0 {
		t.Error("Perspective: expected non-zero Y scale")
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	target := NewVec3(0, 0, 0)
	up := Vec3Up

	m := Mat4LookAt(eye, target, up)

	// The view matrix should transform the eye position to origin
	point := eye.ToVec4(1)
	result := m.MulVec(point)

	tolerance := float32(0.001)
	if math32.Abs(result.X) > tolerance ||
		math32.Abs(result.Y) > tolerance ||
		math32.Abs(result.Z) > tolerance {
		t.Errorf("LookAt: expected eye to transform to origin, got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestScalarHelpers(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp above: expected 1, got %v", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("Clamp below: expected 0, got %v", got)
	}
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Errorf("Lerp: expected 5, got %v", got)
	}
	if got := Radians(180); math32.Abs(got-math32.Pi) > 0.0001 {
		t.Errorf("Radians: expected pi, got %v", got)
	}
	if got := Degrees(math32.Pi); math32.Abs(got-180) > 0.001 {
		t.Errorf("Degrees: expected 180, got %v", got)
	}
}

func TestQuaternionFromBasis(t *testing.T) {
	// Identity basis
	q := QuaternionFromBasis(Vec3Right, Vec3Up, Vec3Front)
	if math32.Abs(q.W-1) > 0.0001 {
		t.Errorf("identity basis: expected w=1, got %v", q.W)
	}

	// Round-trip through ToMat4; the 180-degree cases hit the three
	// non-trace extraction branches
	cases := []Quaternion{
		QuaternionFromAxisAngle(Vec3Up, math32.Pi/2),
		QuaternionFromAxisAngle(Vec3Right, math32.Pi),
		QuaternionFromAxisAngle(Vec3Up, math32.Pi),
		QuaternionFromAxisAngle(Vec3Front, math32.Pi),
		QuaternionFromEuler(NewVec3(0.4, -1.1, 2.6)),
	}
	for i, want := range cases {
		m := want.ToMat4()
		x := NewVec3(m[0][0], m[0][1], m[0][2])
		y := NewVec3(m[1][0], m[1][1], m[1][2])
		z := NewVec3(m[2][0], m[2][1], m[2][2])
		got := QuaternionFromBasis(x, y, z)

		// q and -q encode the same rotation
		dot := got.X*want.X + got.Y*want.Y + got.Z*want.Z + got.W*want.W
		if math32.Abs(math32.Abs(dot)-1) > 0.001 {
			t.Errorf("case %d: extracted rotation disagrees with source (dot %v)", i, dot)
		}
	}
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Mat4TRS(NewVec3(3, -2, 7), NewVec3(0.4, 1.2, -0.3), NewVec3(2, 2, 2))

	for i := 0; i < b.N; i++ {
		_ = m.Inverse()
	}
}
