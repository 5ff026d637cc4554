package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/core"
	"scenelab/math"
)

func TestComputeTangentsAlignsWithUV(t *testing.T) {
	// A quad in the XY plane with U increasing along +X: the tangent must
	// point along +X and stay perpendicular to the normal.
	vertices := []core.Vertex{
		{Position: math.Vec3{X: 0, Y: 0}, Normal: math.Vec3{Z: 1}, UV: math.Vec2{X: 0, Y: 0}},
		{Position: math.Vec3{X: 1, Y: 0}, Normal: math.Vec3{Z: 1}, UV: math.Vec2{X: 1, Y: 0}},
		{Position: math.Vec3{X: 1, Y: 1}, Normal: math.Vec3{Z: 1}, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{X: 0, Y: 1}, Normal: math.Vec3{Z: 1}, UV: math.Vec2{X: 0, Y: 1}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	m := CreateMeshFromData("quad", vertices, indices)

	ComputeTangents(m)

	for i, v := range m.Vertices {
		require.InDelta(t, 1.0, float64(v.Tangent.Length()), 0.001, "vertex %d", i)
		assert.InDelta(t, 1.0, float64(v.Tangent.X), 0.001, "vertex %d", i)
		assert.InDelta(t, 0.0, float64(v.Tangent.Dot(v.Normal)), 0.001, "vertex %d", i)
		assert.InDelta(t, 1.0, float64(v.Bitangent.Length()), 0.001, "vertex %d", i)
	}
}

func TestComputeTangentsDegenerateUVFallback(t *testing.T) {
	// All UVs identical: no gradient to derive a tangent from. The fallback
	// still produces a unit tangent frame perpendicular to the normal.
	vertices := []core.Vertex{
		{Position: math.Vec3{X: 0, Y: 0}, Normal: math.Vec3{Z: 1}},
		{Position: math.Vec3{X: 1, Y: 0}, Normal: math.Vec3{Z: 1}},
		{Position: math.Vec3{X: 0, Y: 1}, Normal: math.Vec3{Z: 1}},
	}
	indices := []uint32{0, 1, 2}
	m := CreateMeshFromData("degen", vertices, indices)

	ComputeTangents(m)

	for i, v := range m.Vertices {
		assert.InDelta(t, 1.0, float64(v.Tangent.Length()), 0.001, "vertex %d", i)
		assert.Less(t, math32.Abs(v.Tangent.Dot(v.Normal)), float32(0.001), "vertex %d", i)
		assert.InDelta(t, 1.0, float64(v.Bitangent.Length()), 0.001, "vertex %d", i)
	}
}
