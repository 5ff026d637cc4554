package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/core"
	"scenelab/math"
)

func TestGetVisibleNodesHidesSubtree(t *testing.T) {
	s := NewScene()

	solo := NewNode("solo")
	solo.Mesh = CreateCube(1)

	group := NewNode("group")
	group.Mesh = CreateCube(1)
	inner := NewNode("inner")
	inner.Mesh = CreateCube(1)
	group.AddChild(inner)

	s.AddNode(solo)
	s.AddNode(group)

	require.Len(t, s.GetVisibleNodes(), 3)

	// Hiding the group hides its children too
	group.Visible = false
	visible := s.GetVisibleNodes()
	require.Len(t, visible, 1)
	assert.Equal(t, "solo", visible[0].Name)

	group.Visible = true
	inner.Visible = false
	require.Len(t, s.GetVisibleNodes(), 2)
}

func TestGetVisibleNodesSkipsGroups(t *testing.T) {
	s := NewScene()

	group := NewNode("group") // no mesh
	leaf := NewNode("leaf")
	leaf.Mesh = CreateCube(1)
	group.AddChild(leaf)
	s.AddNode(group)

	visible := s.GetVisibleNodes()
	require.Len(t, visible, 1)
	assert.Equal(t, "leaf", visible[0].Name)
}

func TestSceneFindNode(t *testing.T) {
	s := NewScene()
	n := NewNode("drum")
	s.AddNode(n)

	require.Same(t, n, s.FindNode("drum"))
	require.Nil(t, s.FindNode("missing"))
}

func TestSceneRemoveNode(t *testing.T) {
	s := NewScene()
	n := NewNode("gone")
	s.AddNode(n)
	s.RemoveNode(n)

	require.Nil(t, s.FindNode("gone"))
	require.Nil(t, n.Parent)
}

func TestSceneLights(t *testing.T) {
	s := NewScene()

	sun := NewDirectionalLight(math.Vec3{X: 1, Y: -2, Z: 0}, 0.9)
	lamp := NewPointLight(math.Vec3{Y: 3}, core.Color{R: 1, G: 0.8, B: 0.6, A: 1}, 2, 15)
	s.AddLight(sun)
	s.AddLight(lamp)
	require.Len(t, s.Lights, 2)

	// Directional light direction is stored normalised
	assert.InDelta(t, 1.0, float64(sun.Direction.Length()), 0.001)
	assert.Equal(t, LightTypeDirectional, sun.Type)
	assert.Equal(t, LightTypePoint, lamp.Type)
	assert.Equal(t, float32(15), lamp.Range)

	s.RemoveLight(sun)
	require.Len(t, s.Lights, 1)
	assert.Same(t, lamp, s.Lights[0])
}
