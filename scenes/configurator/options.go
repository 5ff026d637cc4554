package configurator

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"scenelab/core"
	"scenelab/math"
	"scenelab/scene"
	"scenelab/scenes"
)

// paintSeconds is how long a paint change takes to blend in.
const paintSeconds = 0.45

// Choice is one selectable variant within an option group.
type Choice struct {
	Name      string
	Albedo    core.Color
	Metallic  float32
	Roughness float32
	Hide      bool // hides the group's parts instead of painting them
}

// Group is one configurable aspect of the product: the part nodes it owns
// and the choices it cycles through. All parts in a group share a material.
type Group struct {
	Name    string
	Key     int // direct-select key
	Parts   []string
	Choices []Choice
	index   int
}

// Current returns the selected choice.
func (g *Group) Current() Choice { return g.Choices[g.index] }

// Index returns the selected choice position.
func (g *Group) Index() int { return g.index }

// wrapped returns i folded into the valid choice range.
func (g *Group) wrapped(i int) int {
	n := len(g.Choices)
	return ((i % n) + n) % n
}

// defaultGroups is the roadster's option catalogue.
func defaultGroups() []*Group {
	return []*Group{
		{
			Name:  "body",
			Key:   core.KeyB,
			Parts: []string{"body", "cabin"},
			Choices: []Choice{
				{Name: "crimson", Albedo: core.Color{R: 0.72, G: 0.07, B: 0.12, A: 1}, Metallic: 0.85, Roughness: 0.35},
				{Name: "cobalt", Albedo: core.Color{R: 0.10, G: 0.22, B: 0.65, A: 1}, Metallic: 0.85, Roughness: 0.35},
				{Name: "silver", Albedo: core.Color{R: 0.75, G: 0.77, B: 0.80, A: 1}, Metallic: 0.95, Roughness: 0.25},
				{Name: "forest", Albedo: core.Color{R: 0.08, G: 0.35, B: 0.16, A: 1}, Metallic: 0.70, Roughness: 0.45},
				{Name: "sunburst", Albedo: core.Color{R: 0.95, G: 0.65, B: 0.08, A: 1}, Metallic: 0.80, Roughness: 0.30},
			},
		},
		{
			Name:  "trim",
			Key:   core.KeyT,
			Parts: []string{"trim_front", "trim_rear"},
			Choices: []Choice{
				{Name: "chrome", Albedo: core.Color{R: 0.85, G: 0.87, B: 0.90, A: 1}, Metallic: 1, Roughness: 0.08},
				{Name: "gloss black", Albedo: core.Color{R: 0.04, G: 0.04, B: 0.05, A: 1}, Metallic: 0.6, Roughness: 0.15},
				{Name: "gold", Albedo: core.Color{R: 0.85, G: 0.65, B: 0.13, A: 1}, Metallic: 1, Roughness: 0.2},
			},
		},
		{
			Name:  "wheels",
			Key:   core.KeyW,
			Parts: []string{"wheel_fl", "wheel_fr", "wheel_rl", "wheel_rr"},
			Choices: []Choice{
				{Name: "graphite", Albedo: core.Color{R: 0.15, G: 0.15, B: 0.17, A: 1}, Metallic: 0.7, Roughness: 0.5},
				{Name: "polished", Albedo: core.Color{R: 0.78, G: 0.78, B: 0.80, A: 1}, Metallic: 1, Roughness: 0.15},
				{Name: "bronze", Albedo: core.Color{R: 0.55, G: 0.35, B: 0.17, A: 1}, Metallic: 0.9, Roughness: 0.3},
			},
		},
		{
			Name:  "kit",
			Key:   core.KeyK,
			Parts: []string{"spoiler"},
			Choices: []Choice{
				{Name: "spoiler", Albedo: core.Color{R: 0.06, G: 0.06, B: 0.07, A: 1}, Metallic: 0.5, Roughness: 0.4},
				{Name: "clean tail", Hide: true},
			},
		},
	}
}

// buildProduct assembles the procedural roadster and returns its root along
// with the named part nodes the option groups paint.
func buildProduct(res *scenes.Resources) (*scene.Node, map[string]*scene.Node) {
	root := scene.NewNode("product")
	parts := make(map[string]*scene.Node)

	add := func(name string, mesh *scene.Mesh, pos, scale math.Vec3) *scene.Node {
		n := scene.NewNode(name)
		n.Mesh = res.TrackMesh(mesh)
		n.SetPosition(pos)
		n.SetScale(scale)
		root.AddChild(n)
		parts[name] = n
		return n
	}

	add("body", scene.CreateCube(1), math.Vec3{Y: 0.42}, math.Vec3{X: 2.9, Y: 0.5, Z: 1.3})
	add("cabin", scene.CreateCube(1), math.Vec3{X: -0.25, Y: 0.88}, math.Vec3{X: 1.3, Y: 0.5, Z: 1.1})
	add("trim_front", scene.CreateCube(1), math.Vec3{X: 1.5, Y: 0.32}, math.Vec3{X: 0.22, Y: 0.22, Z: 1.34})
	add("trim_rear", scene.CreateCube(1), math.Vec3{X: -1.5, Y: 0.32}, math.Vec3{X: 0.22, Y: 0.22, Z: 1.34})
	add("spoiler", scene.CreateCube(1), math.Vec3{X: -1.45, Y: 1.05}, math.Vec3{X: 0.3, Y: 0.08, Z: 1.4})

	wheelAt := func(name string, x, z float32) {
		w := add(name, scene.CreateTorus(0.3, 0.13, 18, 10), math.Vec3{X: x, Y: 0.3, Z: z}, math.Vec3One)
		w.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, math.Pi/2))
	}
	wheelAt("wheel_fl", 0.95, 0.72)
	wheelAt("wheel_fr", 0.95, -0.72)
	wheelAt("wheel_rl", -0.95, 0.72)
	wheelAt("wheel_rr", -0.95, -0.72)

	return root, parts
}

// paintTween blends a group's shared material from one choice to another.
type paintTween struct {
	mat  *scene.Material
	from Choice
	to   Choice
	tw   *gween.Tween
}

func newPaintTween(mat *scene.Material, to Choice) *paintTween {
	from := Choice{Albedo: mat.Albedo, Metallic: mat.Metallic, Roughness: mat.Roughness}
	return &paintTween{
		mat:  mat,
		from: from,
		to:   to,
		tw:   gween.New(0, 1, paintSeconds, ease.OutQuad),
	}
}

// update advances the blend and reports whether it has finished.
func (p *paintTween) update(dt float32) bool {
	t, done := p.tw.Update(dt)
	p.mat.Albedo = p.from.Albedo.Lerp(p.to.Albedo, t)
	p.mat.Metallic = math.Lerp(p.from.Metallic, p.to.Metallic, t)
	p.mat.Roughness = math.Lerp(p.from.Roughness, p.to.Roughness, t)
	return done
}
