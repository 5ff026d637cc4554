package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func pickScene(t *testing.T, nodes ...*Node) *Scene {
	t.Helper()
	s := NewScene()
	for _, n := range nodes {
		s.AddNode(n)
	}
	return s
}

func cubeNode(name string, pos math.Vec3) *Node {
	n := NewNode(name)
	n.Mesh = CreateCube(1)
	n.SetPosition(pos)
	return n
}

func TestRaycastHitsCube(t *testing.T) {
	s := pickScene(t, cubeNode("box", math.Vec3Zero))

	ray := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}
	hit := RaycastScene(ray, s)

	require.True(t, hit.Hit)
	assert.Equal(t, "box", hit.Node.Name)
	assert.InDelta(t, 4.5, hit.Distance, 1e-4) // unit cube face at z = +0.5
	assert.InDelta(t, 0.5, hit.Point.Z, 1e-4)
}

func TestRaycastMiss(t *testing.T) {
	s := pickScene(t, cubeNode("box", math.Vec3Zero))

	ray := Ray{Origin: math.Vec3{X: 10, Z: 5}, Direction: math.Vec3{Z: -1}}
	hit := RaycastScene(ray, s)

	assert.False(t, hit.Hit)
	assert.Nil(t, hit.Node)
}

func TestRaycastPicksClosestNode(t *testing.T) {
	near := cubeNode("near", math.Vec3{Z: 2})
	far := cubeNode("far", math.Vec3{Z: -3})
	s := pickScene(t, far, near)

	ray := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	hit := RaycastScene(ray, s)

	require.True(t, hit.Hit)
	assert.Equal(t, "near", hit.Node.Name)
}

func TestRaycastSkipsInvisibleNodes(t *testing.T) {
	box := cubeNode("box", math.Vec3Zero)
	box.Visible = false
	s := pickScene(t, box)

	ray := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}
	assert.False(t, RaycastScene(ray, s).Hit)
}

func TestRaycastRespectsNodeTransform(t *testing.T) {
	box := cubeNode("box", math.Vec3{X: 4})
	box.SetScale(math.Vec3{X: 2, Y: 2, Z: 2})
	s := pickScene(t, box)

	// Scaled face now sits at x = 4 - 1 = 3.
	ray := Ray{Origin: math.Vec3{X: -5}, Direction: math.Vec3{X: 1}}
	hit := RaycastScene(ray, s)

	require.True(t, hit.Hit)
	assert.InDelta(t, 8.0, hit.Distance, 1e-3)
}

func TestScreenToRayCenterMatchesCameraForward(t *testing.T) {
	cam := NewCamera(60, 16.0/9.0, 0.1, 100)
	cam.SetPosition(math.Vec3{Y: 2, Z: 8})

	ray := ScreenToRay(640, 360, 1280, 720, cam)

	assert.Equal(t, cam.Position, ray.Origin)
	fwd := cam.GetForward()
	assert.InDelta(t, float64(fwd.X), float64(ray.Direction.X), 1e-3)
	assert.InDelta(t, float64(fwd.Y), float64(ray.Direction.Y), 1e-3)
	assert.InDelta(t, float64(fwd.Z), float64(ray.Direction.Z), 1e-3)
}

func TestScreenToRayCornersDiverge(t *testing.T) {
	cam := NewCamera(60, 1, 0.1, 100)
	cam.SetPosition(math.Vec3{Z: 5})

	left := ScreenToRay(0, 300, 600, 600, cam)
	right := ScreenToRay(600, 300, 600, 600, cam)

	assert.Less(t, left.Direction.X, float32(0))
	assert.Greater(t, right.Direction.X, float32(0))
}

func TestRayTriangleBackface(t *testing.T) {
	// Winding makes the normal face +Z; the ray approaches from -Z.
	v0 := math.Vec3{X: -1, Y: -1}
	v1 := math.Vec3{X: 1, Y: -1}
	v2 := math.Vec3{Y: 1}

	ray := Ray{Origin: math.Vec3{Z: -3}, Direction: math.Vec3{Z: 1}}
	dist, hit := rayTriangle(ray, v0, v1, v2)

	require.True(t, hit)
	assert.InDelta(t, 3.0, dist, 1e-5)
}
