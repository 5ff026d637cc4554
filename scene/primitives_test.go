package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func requireIndicesInRange(t *testing.T, m *Mesh) {
	t.Helper()
	for _, idx := range m.Indices {
		require.Less(t, int(idx), len(m.Vertices))
	}
	require.Equal(t, uint32(len(m.Indices)), m.IndexCount)
	require.Zero(t, len(m.Indices)%3, "triangle list length")
}

func TestCreateSphere(t *testing.T) {
	m := CreateSphere(2, 16, 8)
	require.Len(t, m.Vertices, 17*9)
	requireIndicesInRange(t, m)

	for _, v := range m.Vertices {
		assert.InDelta(t, 2.0, float64(v.Position.Length()), 0.001)
		assert.InDelta(t, 1.0, float64(v.Normal.Length()), 0.001)
	}
}

func TestCreateSphereClampsDegenerateArgs(t *testing.T) {
	m := CreateSphere(1, 1, 1)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)
}

func TestCreateCapsule(t *testing.T) {
	m := CreateCapsule(0.5, 2, 8, 12)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)

	minY, maxY := m.Vertices[0].Position.Y, m.Vertices[0].Position.Y
	for _, v := range m.Vertices {
		if v.Position.Y < minY {
			minY = v.Position.Y
		}
		if v.Position.Y > maxY {
			maxY = v.Position.Y
		}

		// Every vertex lies on one of the two hemisphere shells.
		center := math.Vec3{Y: 1}
		if v.Position.Y < 0 {
			center = math.Vec3{Y: -1}
		}
		assert.InDelta(t, 0.5, float64(v.Position.Sub(center).Length()), 0.001)
		assert.InDelta(t, 1.0, float64(v.Normal.Length()), 0.001)
	}
	assert.InDelta(t, 1.5, float64(maxY), 0.001, "total extent is height plus two radii")
	assert.InDelta(t, -1.5, float64(minY), 0.001)
}

func TestCreateCylinder(t *testing.T) {
	m := CreateCylinder(1, 3, 12)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)

	for _, v := range m.Vertices {
		assert.LessOrEqual(t, math32.Abs(v.Position.Y), float32(1.501))
		radial := math32.Sqrt(v.Position.X*v.Position.X + v.Position.Z*v.Position.Z)
		assert.LessOrEqual(t, radial, float32(1.001))
	}
}

func TestCreateCone(t *testing.T) {
	m := CreateCone(1, 2, 12)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)

	var sawTip bool
	for _, v := range m.Vertices {
		if v.Position.Y > 0.999 {
			sawTip = true
		}
		assert.GreaterOrEqual(t, v.Position.Y, float32(-1.001))
		assert.LessOrEqual(t, v.Position.Y, float32(1.001))
	}
	assert.True(t, sawTip, "apex vertex present at +height/2")
}

func TestCreateTorus(t *testing.T) {
	m := CreateTorus(2, 0.5, 16, 8)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)

	for _, v := range m.Vertices {
		ringDist := math32.Sqrt(v.Position.X*v.Position.X+v.Position.Z*v.Position.Z) - 2
		tube := math32.Sqrt(ringDist*ringDist + v.Position.Y*v.Position.Y)
		assert.InDelta(t, 0.5, float64(tube), 0.001)
	}
}

func TestCreatePlane(t *testing.T) {
	m := CreatePlane(10, 10, 4)
	require.Len(t, m.Vertices, 5*5)
	requireIndicesInRange(t, m)
	require.Len(t, m.Indices, 4*4*6)

	for _, v := range m.Vertices {
		assert.Zero(t, v.Position.Y)
		requireVec3Near(t, math.Vec3Up, v.Normal)
		assert.LessOrEqual(t, math32.Abs(v.Position.X), float32(5.001))
		assert.LessOrEqual(t, math32.Abs(v.Position.Z), float32(5.001))
	}
}

func TestCreatePyramid(t *testing.T) {
	m := CreatePyramid(2, 3)
	require.NotEmpty(t, m.Vertices)
	requireIndicesInRange(t, m)

	var apex, base int
	for _, v := range m.Vertices {
		switch {
		case v.Position.Y > 1.499:
			apex++
		case v.Position.Y < -1.499:
			base++
		}
	}
	assert.NotZero(t, apex)
	assert.NotZero(t, base)
}

func TestCreateGridLines(t *testing.T) {
	m := CreateGrid(10, 10)
	require.NotEmpty(t, m.Vertices)
	require.Equal(t, DrawLines, m.DrawMode)
	require.Zero(t, len(m.Indices)%2, "line list length")
	require.NotNil(t, m.Material)
	assert.True(t, m.Material.Unlit)

	for _, v := range m.Vertices {
		assert.Zero(t, v.Position.Y, "grid lies in the XZ plane")
	}
}

func TestCreateUnitBoxWireframe(t *testing.T) {
	m := CreateUnitBoxWireframe()
	require.Equal(t, DrawLines, m.DrawMode)
	require.Len(t, m.Vertices, 8)
	require.Len(t, m.Indices, 24)
	requireIndicesInRange(t, m)
}
