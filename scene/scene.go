package scene

import (
	"scenelab/core"
	"scenelab/math"
)

// Scene holds a node graph, its light list, and the active camera.
type Scene struct {
	Root     *Node
	Camera   *Camera
	Lights   []*Light
	Ambient  core.Color
	SkyColor core.Color
}

// Light types
const (
	LightTypeDirectional = iota
	LightTypePoint
	LightTypeSpot
)

// Light represents a light source. Directional lights use Direction only;
// point lights use Position and Range; spot lights use all fields.
type Light struct {
	Type      int
	Position  math.Vec3
	Direction math.Vec3
	Color     core.Color
	Intensity float32
	Range     float32
	SpotAngle float32
}

// NewDirectionalLight returns a white directional light shining along dir.
func NewDirectionalLight(dir math.Vec3, intensity float32) *Light {
	return &Light{
		Type:      LightTypeDirectional,
		Direction: dir.Normalize(),
		Color:     core.ColorWhite,
		Intensity: intensity,
	}
}

// NewPointLight returns a point light at pos with the given color and falloff range.
func NewPointLight(pos math.Vec3, color core.Color, intensity, lightRange float32) *Light {
	return &Light{
		Type:      LightTypePoint,
		Position:  pos,
		Color:     color,
		Intensity: intensity,
		Range:     lightRange,
	}
}

func NewScene() *Scene {
	return &Scene{
		Root:     NewNode("Root"),
		Lights:   make([]*Light, 0),
		Ambient:  core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
		SkyColor: core.Color{R: 0.5, G: 0.7, B: 1.0, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

func (s *Scene) RemoveLight(light *Light) {
	for i, l := range s.Lights {
		if l == light {
			s.Lights = append(s.Lights[:i], s.Lights[i+1:]...)
			return
		}
	}
}

// FindNode returns the first node with the given name, or nil.
func (s *Scene) FindNode(name string) *Node {
	return s.Root.Find(name)
}

// GetVisibleNodes returns all mesh-bearing nodes whose ancestors are all
// visible. An invisible group hides its whole subtree.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}
