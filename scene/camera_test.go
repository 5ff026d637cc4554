package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func TestCameraLookAtMatchesMat4LookAt(t *testing.T) {
	cam := NewCamera(math.Radians(60), 16.0/9.0, 0.1, 100)
	cam.SetPosition(math.Vec3{X: 3, Y: 4, Z: 5})
	cam.LookAt(math.Vec3Zero, math.Vec3Up)

	view := cam.GetViewMatrix()
	want := math.Mat4LookAt(cam.Position, math.Vec3Zero, math.Vec3Up)

	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			assert.InDelta(t, float64(want[c][r]), float64(view[c][r]), 0.001,
				"view[%d][%d]", c, r)
		}
	}
}

func TestCameraForwardAfterLookAt(t *testing.T) {
	cam := NewCamera(math.Radians(60), 1, 0.1, 100)
	cam.SetPosition(math.Vec3{X: 0, Y: 2, Z: 5})
	target := math.Vec3{X: 1, Y: 0, Z: -2}
	cam.LookAt(target, math.Vec3Up)

	want := target.Sub(cam.Position).Normalize()
	requireVec3Near(t, want, cam.GetForward())
}

func TestCameraProjectsStraightAheadToCenter(t *testing.T) {
	cam := NewCamera(math.Radians(60), 1, 0.1, 100)

	// Default orientation looks down -Z. A point straight ahead lands at the
	// NDC center with clip w equal to the view-space depth.
	clip := cam.GetViewProjectionMatrix().MulVec(math.Vec4{Z: -5, W: 1})
	require.InDelta(t, 5.0, float64(clip.W), 0.001)
	assert.InDelta(t, 0, float64(clip.X/clip.W), 0.001)
	assert.InDelta(t, 0, float64(clip.Y/clip.W), 0.001)

	// A point to the camera's right lands in the right half of NDC.
	clip = cam.GetViewProjectionMatrix().MulVec(math.Vec4{X: 1, Z: -5, W: 1})
	assert.Greater(t, clip.X/clip.W, float32(0))
}

func TestCameraAspectRatioUpdateWidensView(t *testing.T) {
	cam := NewCamera(math.Radians(60), 1, 0.1, 100)
	narrow := cam.GetViewProjectionMatrix().MulVec(math.Vec4{X: 1, Z: -5, W: 1})

	cam.UpdateAspectRatio(2, 1)
	wide := cam.GetViewProjectionMatrix().MulVec(math.Vec4{X: 1, Z: -5, W: 1})

	// Widening the aspect ratio shrinks the horizontal NDC coordinate.
	assert.Less(t, wide.X/wide.W, narrow.X/narrow.W)
}

func TestOrbitCameraDampingConverges(t *testing.T) {
	cam := NewOrbitCamera(math.Vec3Zero, 10, math.Radians(60), 1)
	startYaw := cam.Yaw

	cam.Orbit(1.0, 0)
	// Orbit moves the goal. The actual angle only eases over during Update.
	require.InDelta(t, float64(startYaw), float64(cam.Yaw), 1e-6)

	for i := 0; i < 120; i++ {
		cam.Update(1.0 / 60.0)
	}
	assert.InDelta(t, float64(startYaw+1.0), float64(cam.Yaw), 0.01)

	cam.Zoom(-20)
	for i := 0; i < 240; i++ {
		cam.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 0.1, float64(cam.Distance), 0.01, "distance clamps at the minimum")
}

func TestOrbitCameraPitchClamp(t *testing.T) {
	cam := NewOrbitCamera(math.Vec3Zero, 5, math.Radians(60), 1)
	cam.Orbit(0, 10)
	for i := 0; i < 240; i++ {
		cam.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 1.5, float64(cam.Pitch), 0.01)
}

func TestOrbitCameraSnap(t *testing.T) {
	cam := NewOrbitCamera(math.Vec3{X: 2}, 5, math.Radians(60), 1)
	cam.Orbit(0.7, -0.2)
	cam.Zoom(3)
	cam.Snap()

	assert.InDelta(t, 0.7, float64(cam.Yaw), 1e-4)
	assert.InDelta(t, 0.1, float64(cam.Pitch), 1e-4)
	assert.InDelta(t, 8.0, float64(cam.Distance), 1e-4)

	want := cam.Target.Sub(cam.Position).Normalize()
	requireVec3Near(t, want, cam.GetForward())
}

func TestFlyCameraLevelFlight(t *testing.T) {
	cam := NewFlyCamera(math.Radians(70), 16.0/9.0)
	start := cam.Position

	for i := 0; i < 60; i++ {
		cam.Steer(0, 0, 1.0/60.0)
	}
	moved := cam.Position.Sub(start)
	assert.InDelta(t, 0, float64(moved.X), 0.01)
	assert.InDelta(t, 0, float64(moved.Y), 0.01)
	assert.InDelta(t, float64(-cam.Speed), float64(moved.Z), 0.05)
	assert.InDelta(t, 0, float64(cam.Roll), 1e-5)
}

func TestFlyCameraRightTurnBanksRight(t *testing.T) {
	cam := NewFlyCamera(math.Radians(70), 1)

	for i := 0; i < 60; i++ {
		cam.Steer(1, 0, 1.0/60.0)
	}

	fwd := cam.Forward()
	assert.Greater(t, fwd.X, float32(0), "heading swings toward +X")
	assert.Greater(t, cam.Roll, float32(0), "banks into the turn")
	assert.LessOrEqual(t, cam.Roll, cam.MaxBank+1e-4)

	// Releasing the stick levels the wings again.
	for i := 0; i < 300; i++ {
		cam.Steer(0, 0, 1.0/60.0)
	}
	assert.InDelta(t, 0, float64(cam.Roll), 0.01)
}

func TestFlyCameraClimbClamp(t *testing.T) {
	cam := NewFlyCamera(math.Radians(70), 1)
	for i := 0; i < 600; i++ {
		cam.Steer(0, 1, 1.0/60.0)
	}
	assert.InDelta(t, 1.2, float64(cam.Pitch), 1e-4)
	assert.Greater(t, cam.Position.Y, float32(0), "sustained pull-up climbs")
}

func TestFlyCameraForwardMatchesOrientation(t *testing.T) {
	cam := NewFlyCamera(math.Radians(70), 1)
	cam.Steer(0.4, -0.3, 0.5)

	// The analytic heading and the quaternion orientation agree.
	want := cam.Rotation.RotateVector(math.Vec3Back)
	requireVec3Near(t, want, cam.Forward())
	assert.InDelta(t, 1.0, float64(cam.Forward().Length()), 0.001)
}

func TestFrustumFromCameraCullsOutsideBoxes(t *testing.T) {
	cam := NewCamera(math.Radians(60), 1, 0.1, 100)
	f := FrustumFromVP(cam.GetViewProjectionMatrix())

	inFront := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -6}, Max: math.Vec3{X: 1, Y: 1, Z: -4}}
	behind := AABB{Min: math.Vec3{X: -1, Y: -1, Z: 4}, Max: math.Vec3{X: 1, Y: 1, Z: 6}}
	tooFar := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -300}, Max: math.Vec3{X: 1, Y: 1, Z: -200}}
	offSide := AABB{Min: math.Vec3{X: 50, Y: -1, Z: -6}, Max: math.Vec3{X: 52, Y: 1, Z: -4}}
	straddling := AABB{Min: math.Vec3{X: -1, Y: -1, Z: -5}, Max: math.Vec3{X: 30, Y: 1, Z: -4}}

	assert.True(t, inFront.IntersectsFrustum(&f))
	assert.False(t, behind.IntersectsFrustum(&f))
	assert.False(t, tooFar.IntersectsFrustum(&f))
	assert.False(t, offSide.IntersectsFrustum(&f))
	assert.True(t, straddling.IntersectsFrustum(&f), "partial overlap is kept")
}

func TestFrustumFollowsCameraOrientation(t *testing.T) {
	cam := NewCamera(math.Radians(60), 1, 0.1, 100)
	cam.LookAt(math.Vec3{X: 10}, math.Vec3Up)
	f := FrustumFromVP(cam.GetViewProjectionMatrix())

	ahead := AABB{Min: math.Vec3{X: 9, Y: -1, Z: -1}, Max: math.Vec3{X: 11, Y: 1, Z: 1}}
	behindNow := AABB{Min: math.Vec3{X: -11, Y: -1, Z: -1}, Max: math.Vec3{X: -9, Y: 1, Z: 1}}

	assert.True(t, ahead.IntersectsFrustum(&f))
	assert.False(t, behindNow.IntersectsFrustum(&f))
}

func TestComputeAABBUsesWorldTransform(t *testing.T) {
	n := NewNode("box")
	n.Mesh = CreateCube(1)
	n.SetPosition(math.Vec3{X: 10})
	n.SetScale(math.Vec3{X: 2, Y: 2, Z: 2})

	box := ComputeAABB(n.Mesh, n.GetWorldMatrix())
	requireVec3Near(t, math.Vec3{X: 9, Y: -1, Z: -1}, box.Min)
	requireVec3Near(t, math.Vec3{X: 11, Y: 1, Z: 1}, box.Max)

	// Rotating 45 degrees about Y widens the X/Z extents.
	n.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Up, math.Pi/4))
	box = ComputeAABB(n.Mesh, n.GetWorldMatrix())
	half := float32(2) * math32.Sqrt(2) / 2
	assert.InDelta(t, float64(10-half), float64(box.Min.X), 0.01)
	assert.InDelta(t, float64(10+half), float64(box.Max.X), 0.01)
}
