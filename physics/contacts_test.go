package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func TestContactSphereBoxFromAbove(t *testing.T) {
	box := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 0)
	box.ID = 1
	s := NewSphereBody(0.5, 1)
	s.Position = math.Vec3{Y: 1.4}
	s.ID = 2

	c, ok := contactPair(s, box)
	require.True(t, ok)
	assert.Equal(t, BodyID(2), c.A)
	assert.Equal(t, BodyID(1), c.B)
	assert.InDelta(t, -1.0, float64(c.Normal.Y), 1e-4, "normal points sphere to box")
	assert.InDelta(t, 0.1, float64(c.Depth), 1e-4)
	assert.InDelta(t, 1.0, float64(c.Point.Y), 1e-4, "contact on the box face")
}

func TestContactSphereBoxMiss(t *testing.T) {
	box := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 0)
	s := NewSphereBody(0.5, 1)
	s.Position = math.Vec3{Y: 2}

	_, ok := contactPair(s, box)
	assert.False(t, ok)
}

func TestContactSphereBoxRespectsBoxRotation(t *testing.T) {
	// Box rotated 90 degrees about Z: its local +X face now points up.
	box := NewBoxBody(math.Vec3{X: 2, Y: 0.5, Z: 2}, 0)
	box.Rotation = math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, math.Pi/2)
	s := NewSphereBody(0.5, 1)
	s.Position = math.Vec3{Y: 2.3} // above the rotated 2-unit half extent

	c, ok := contactPair(s, box)
	require.True(t, ok)
	assert.InDelta(t, -1.0, float64(c.Normal.Y), 1e-3)
	assert.InDelta(t, 0.2, float64(c.Depth), 1e-3)
}

func TestContactSphereInsideBoxPicksShallowestFace(t *testing.T) {
	box := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 0)
	s := NewSphereBody(0.25, 1)
	s.Position = math.Vec3{X: 0.9} // closest to the +X face

	c, ok := contactPair(s, box)
	require.True(t, ok)
	assert.InDelta(t, -1.0, float64(c.Normal.X), 1e-4, "ejects through +X, normal still sphere to box")
	assert.InDelta(t, 0.35, float64(c.Depth), 1e-4, "face distance plus radius")
}

func TestContactSpherePlane(t *testing.T) {
	plane := NewStaticPlane(math.Vec3{Y: 1}, 0)
	plane.ID = 7
	s := NewSphereBody(1, 1)
	s.Position = math.Vec3{X: 3, Y: 0.75}
	s.ID = 8

	c, ok := contactPair(s, plane)
	require.True(t, ok)
	assert.Equal(t, BodyID(8), c.A)
	assert.InDelta(t, -1.0, float64(c.Normal.Y), 1e-4)
	assert.InDelta(t, 0.25, float64(c.Depth), 1e-4)
	assert.InDelta(t, 0.0, float64(c.Point.Y), 1e-4, "contact projected onto the plane")
	assert.InDelta(t, 3.0, float64(c.Point.X), 1e-4)
}

func TestContactBoxPlane(t *testing.T) {
	plane := NewStaticPlane(math.Vec3{Y: 1}, 0)
	box := NewBoxBody(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	box.Position = math.Vec3{Y: 0.4} // bottom face 0.1 under the plane

	c, ok := contactPair(box, plane)
	require.True(t, ok)
	assert.InDelta(t, -1.0, float64(c.Normal.Y), 1e-4)
	assert.InDelta(t, 0.1, float64(c.Depth), 1e-4)
	// Four corners penetrate; their mean sits under the box center.
	assert.InDelta(t, 0.0, float64(c.Point.X), 1e-4)
	assert.InDelta(t, -0.1, float64(c.Point.Y), 1e-4)
}

func TestContactBoxPlaneTilted(t *testing.T) {
	plane := NewStaticPlane(math.Vec3{Y: 1}, 0)
	box := NewBoxBody(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1)
	// Tilted 45 degrees about Z: one edge dips below the plane.
	box.Rotation = math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, math.Pi/4)
	box.Position = math.Vec3{Y: 0.6}

	c, ok := contactPair(box, plane)
	require.True(t, ok)
	// Corner depth: half-diagonal sqrt(0.5) ≈ 0.707 minus the 0.6 height.
	assert.InDelta(t, 0.107, float64(c.Depth), 1e-3)
}

func TestBoxBoxPairsAreIgnored(t *testing.T) {
	a := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 1)
	b := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 1)
	b.Position = math.Vec3{X: 0.5}

	_, ok := contactPair(a, b)
	assert.False(t, ok)
}

func TestWorldSphereSettlesInsideBoxDrum(t *testing.T) {
	// An open-top box drum built from a floor plane and four static boxes.
	w := NewWorld(math.Vec3{Y: -10})
	w.AddBody(NewStaticPlane(math.Vec3{Y: 1}, 0))
	walls := []math.Vec3{{X: 3}, {X: -3}, {Z: 3}, {Z: -3}}
	for _, p := range walls {
		wall := NewBoxBody(math.Vec3{X: 0.5, Y: 2, Z: 3}, 0)
		wall.Position = math.Vec3{X: p.X, Y: 2, Z: p.Z}
		if p.Z != 0 {
			wall.HalfExtents = math.Vec3{X: 3, Y: 2, Z: 0.5}
		}
		w.AddBody(wall)
	}

	ball := NewSphereBody(0.5, 1)
	ball.Position = math.Vec3{X: 1, Y: 3}
	id := w.AddBody(ball)
	w.ApplyImpulse(id, math.Vec3{X: 4})

	for i := 0; i < 1200; i++ {
		w.Step(1.0 / 120.0)
	}

	pos := w.Position(id)
	assert.Less(t, absf(pos.X), float32(2.8), "walls keep the ball inside")
	assert.Less(t, absf(pos.Z), float32(2.8))
	assert.Greater(t, pos.Y, float32(0.2))
	assert.Less(t, pos.Y, float32(1.5))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
