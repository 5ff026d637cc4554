// Package configurator is the product-studio scene: a roadster on a slowly
// spinning turntable, option groups for paint, trim, wheels and the body
// kit, click-to-pick parts, animated paint blends, and undo/redo over every
// edit.
package configurator

import (
	"log/slog"

	"scenelab/core"
	"scenelab/logx"
	"scenelab/math"
	"scenelab/overlay"
	"scenelab/scene"
	"scenelab/scenes"
)

type Configurator struct {
	log *slog.Logger
	ctx *scenes.Context

	scene     *scene.Scene
	cam       *scene.OrbitCamera
	product   *scene.Node
	parts     map[string]*scene.Node
	groups    []*Group
	partGroup map[string]*Group
	materials map[string]*scene.Material
	tweens    map[string]*paintTween
	history   *History

	active   int
	picked   string
	spinning bool
	spinRate float32

	panel *overlay.Panel
	hints overlay.HintBar
	res   scenes.Resources
}

func New() *Configurator { return &Configurator{} }

func (c *Configurator) Name() string { return "configurator" }

func (c *Configurator) Init(ctx *scenes.Context) error {
	c.ctx = ctx
	c.log = ctx.Log
	if c.log == nil {
		c.log = logx.Discard()
	}
	c.log = c.log.With("scene", c.Name())

	c.spinning = true
	c.spinRate = ctx.Config.Tuning.TurntableRate
	if c.spinRate <= 0 {
		c.spinRate = 0.35
	}

	w, h := ctx.Window.Size()
	c.scene = scene.NewScene()
	c.cam = scene.NewOrbitCamera(math.Vec3{Y: 0.6}, 7, 45, float32(w)/float32(h))
	c.cam.Orbit(0.7, 0.1)
	c.cam.Snap()
	c.scene.SetCamera(&c.cam.Camera)

	c.buildStudio()

	c.product, c.parts = buildProduct(&c.res)
	c.product.SetPosition(math.Vec3{Y: 0.14})
	c.scene.AddNode(c.product)

	c.groups = defaultGroups()
	c.partGroup = make(map[string]*Group)
	c.materials = make(map[string]*scene.Material)
	c.tweens = make(map[string]*paintTween)
	c.history = NewHistory(64)
	for _, g := range c.groups {
		first := g.Choices[0]
		mat := scene.NewPBRMaterial(g.Name, first.Albedo, first.Metallic, first.Roughness)
		c.materials[g.Name] = mat
		for _, part := range g.Parts {
			c.partGroup[part] = g
			if node := c.parts[part]; node != nil {
				node.Mesh.Material = mat
				node.Visible = !first.Hide
			}
		}
	}

	c.panel = overlay.NewPanel("configurator", overlay.TopLeft)
	c.hints = overlay.HintBar{Text: "click pick   [ ] change   b/t/w/k group   ctrl+z undo   space spin   1-5 scenes"}

	c.bindInput()

	re := ctx.Renderer
	re.SetScene(c.scene)
	if err := re.EnableSkybox(); err != nil {
		c.log.Warn("skybox unavailable", "error", err)
	}
	re.SetSkyboxColors(
		core.Color{R: 0.30, G: 0.31, B: 0.34, A: 1},
		core.Color{R: 0.52, G: 0.53, B: 0.56, A: 1},
		core.Color{R: 0.22, G: 0.22, B: 0.24, A: 1},
	)
	re.SetFog(false, 0, core.ColorBlack)
	re.EnableIBL()
	c.log.Info("configurator ready", "groups", len(c.groups))
	return nil
}

// buildStudio sets the neutral backdrop: floor, turntable disc, and a
// three-point light rig.
func (c *Configurator) buildStudio() {
	floor := scene.NewNode("studio_floor")
	floor.Mesh = c.res.TrackMesh(scene.CreatePlane(30, 30, 4))
	floor.Mesh.Material = scene.NewPBRMaterial("studio_floor", core.Color{R: 0.42, G: 0.42, B: 0.45, A: 1}, 0.05, 0.7)
	floor.SetPosition(math.Vec3{Y: -0.12})
	c.scene.AddNode(floor)

	disc := scene.NewNode("turntable")
	disc.Mesh = c.res.TrackMesh(scene.CreateCylinder(2.6, 0.12, 40))
	disc.Mesh.Material = scene.NewPBRMaterial("turntable", core.Color{R: 0.18, G: 0.18, B: 0.20, A: 1}, 0.3, 0.4)
	disc.SetPosition(math.Vec3{Y: -0.06})
	c.scene.AddNode(disc)

	c.scene.Ambient = core.Color{R: 0.18, G: 0.18, B: 0.20, A: 1}
	c.scene.AddLight(scene.NewDirectionalLight(math.Vec3{X: -0.5, Y: -1, Z: -0.35}, 1.1))
	c.scene.AddLight(scene.NewPointLight(math.Vec3{X: 5, Y: 3, Z: 4}, core.Color{R: 1, G: 0.97, B: 0.9, A: 1}, 0.8, 18))
	c.scene.AddLight(scene.NewPointLight(math.Vec3{X: -4, Y: 2, Z: -5}, core.Color{R: 0.85, G: 0.9, B: 1, A: 1}, 0.6, 16))
}

func (c *Configurator) bindInput() {
	in := c.ctx.Input

	in.OnKey(c.Name(), func(key int, pressed bool) {
		if !pressed {
			return
		}
		switch {
		case key == core.KeyLeftBracket:
			c.cycleActive(-1)
		case key == core.KeyRightBracket:
			c.cycleActive(1)
		case key == core.KeySpace:
			c.spinning = !c.spinning
		case key == core.KeyZ && in.CtrlDown():
			if !c.history.Undo() {
				c.log.Debug("nothing to undo")
			}
		case key == core.KeyY && in.CtrlDown():
			c.history.Redo()
		default:
			for i, g := range c.groups {
				if g.Key == key {
					c.active = i
					break
				}
			}
		}
	})

	in.OnMouseButton(c.Name(), func(button int, pressed bool) {
		if button == core.MouseLeft && pressed {
			c.pickAtCursor()
		}
	})

	in.OnScroll(c.Name(), func(dx, dy float64) {
		c.cam.Zoom(float32(-dy) * 0.6)
	})
}

// pickAtCursor raycasts through the mouse and activates the group owning
// the hit part.
func (c *Configurator) pickAtCursor() {
	mx, my := c.ctx.Input.CursorPos()
	w, h := c.ctx.Window.Size()

	ray := scene.ScreenToRay(float32(mx), float32(my), float32(w), float32(h), &c.cam.Camera)
	hit := scene.RaycastScene(ray, c.scene)
	if !hit.Hit {
		return
	}
	group, ok := c.partGroup[hit.Node.Name]
	if !ok {
		return // studio furniture
	}
	c.picked = hit.Node.Name
	for i, g := range c.groups {
		if g == group {
			c.active = i
			break
		}
	}
	c.log.Debug("picked part", "part", c.picked, "group", group.Name)
}

// cycleActive records a choice change on the active group through the
// undo history.
func (c *Configurator) cycleActive(delta int) {
	g := c.groups[c.active]
	from := g.Index()
	to := g.wrapped(from + delta)
	if to == from {
		return
	}
	c.history.Do(&choiceCommand{owner: c, group: g, from: from, to: to})
}

// applySelection is the single write path for choice state, used by both
// execute and undo so each direction animates the same way.
func (c *Configurator) applySelection(g *Group, idx int) {
	g.index = idx
	choice := g.Choices[idx]

	for _, part := range g.Parts {
		if node := c.parts[part]; node != nil {
			node.Visible = !choice.Hide
		}
	}
	if !choice.Hide {
		c.tweens[g.Name] = newPaintTween(c.materials[g.Name], choice)
	}
}

func (c *Configurator) Update(dt float32) {
	in := c.ctx.Input
	if in.MouseDown(core.MouseLeft) {
		dx, dy := in.CursorDelta()
		c.cam.Orbit(float32(dx)*0.008, float32(dy)*0.008)
	}
	c.cam.Update(dt)

	if c.spinning {
		c.product.Rotate(math.Vec3Up, c.spinRate*dt)
	}

	for name, tw := range c.tweens {
		if tw.update(dt) {
			delete(c.tweens, name)
		}
	}
}

func (c *Configurator) Render() {
	re := c.ctx.Renderer
	if err := re.DrawScene(); err != nil {
		c.log.Error("draw failed", "error", err)
	}

	w, h := c.ctx.Window.Size()
	sw, sh := float32(w), float32(h)

	c.panel.Clear()
	for i, g := range c.groups {
		marker := " "
		if i == c.active {
			marker = ">"
		}
		c.panel.AddLine("%s %-7s %s", marker, g.Name, g.Current().Name)
	}
	if c.picked != "" {
		c.panel.AddLine("picked  %s", c.picked)
	}
	if last := c.history.Recent(); last != "" {
		c.panel.AddLine("last    %s", last)
	}
	c.panel.Draw(re, sw, sh)
	c.hints.Draw(re, sw, sh)
}

func (c *Configurator) Destroy() {
	if c.ctx == nil {
		return
	}
	c.ctx.Input.RemoveScope(c.Name())
	c.res.Release(c.ctx.Renderer)
	c.history = nil
	c.tweens = nil
	c.product = nil
	c.scene = nil
	c.ctx = nil
}
