// Package collider is the particle-collider scene: two beam emitters charge
// up and meet at the origin, the impact bursts into a shower of physics
// debris, and a cleanup phase sweeps the floor before the next shot. The
// rhythm is a fixed setup, physics, cleanup cycle.
package collider

import (
	"fmt"
	"log/slog"
	"math/rand"

	"scenelab/core"
	"scenelab/logx"
	"scenelab/math"
	"scenelab/overlay"
	"scenelab/physics"
	"scenelab/scene"
	"scenelab/scenes"
	"scenelab/scenes/cycle"
)

const (
	beamReach     = 10  // pylon distance from the origin
	impactHeight  = 3   // where the beams meet
	debrisRadius  = 0.22
	orbitAutoRate = 0.12
)

var impactPoint = math.Vec3{Y: impactHeight}

type debris struct {
	node *scene.Node
	body physics.BodyID
}

type Collider struct {
	log *slog.Logger
	ctx *scenes.Context

	scene *scene.Scene
	cam   *scene.OrbitCamera
	world *physics.World
	loop  *cycle.Cycle
	step  scenes.Stepper
	rng   *rand.Rand

	beams  [2]*scene.ParticleEmitter
	burst  *scene.ParticleEmitter
	debris []debris
	shards [3]*scene.Mesh // shared debris meshes, one per tint

	panel *overlay.Panel
	hints overlay.HintBar
	res   scenes.Resources
}

func New() *Collider { return &Collider{} }

func (c *Collider) Name() string { return "collider" }

func (c *Collider) Init(ctx *scenes.Context) error {
	c.ctx = ctx
	c.log = ctx.Log
	if c.log == nil {
		c.log = logx.Discard()
	}
	c.log = c.log.With("scene", c.Name())
	c.rng = rand.New(rand.NewSource(9))

	w, h := ctx.Window.Size()
	c.scene = scene.NewScene()
	c.cam = scene.NewOrbitCamera(math.Vec3{Y: 2.5}, 26, 55, float32(w)/float32(h))
	c.cam.Orbit(0.6, 0.12)
	c.cam.Snap()
	c.scene.SetCamera(&c.cam.Camera)

	c.buildArena()
	c.buildEmitters()

	c.world = physics.NewWorld(math.Vec3{Y: -ctx.Config.Tuning.Gravity})
	c.world.AddBody(physics.NewStaticPlane(math.Vec3Up, 0))

	tun := ctx.Config.Tuning
	c.loop = cycle.New(
		cycle.Phase{
			Name:     "setup",
			Duration: tun.CycleSetup,
			Enter: func() {
				c.clearDebris()
				c.setBeams(true)
			},
			Update: func(dt, progress float32) { c.chargeBeams(progress) },
		},
		cycle.Phase{
			Name:     "physics",
			Duration: tun.CyclePhysics,
			Enter: func() {
				c.setBeams(false)
				c.detonate()
			},
		},
		cycle.Phase{
			Name:     "cleanup",
			Duration: tun.CycleCleanup,
			Update:   func(dt, progress float32) { c.fadeDebris(progress) },
			Exit:     func() { c.clearDebris() },
		},
	)

	c.panel = overlay.NewPanel("collider", overlay.TopLeft)
	c.hints = overlay.HintBar{Text: "drag orbit   scroll zoom   r restart   1-5 scenes"}

	ctx.Input.OnKey(c.Name(), func(key int, pressed bool) {
		if pressed && key == core.KeyR {
			c.clearDebris()
			c.loop.Reset()
			c.step.Reset()
		}
	})
	ctx.Input.OnScroll(c.Name(), func(dx, dy float64) {
		c.cam.Zoom(float32(-dy) * 1.5)
	})

	re := ctx.Renderer
	re.SetScene(c.scene)
	if err := re.EnableSkybox(); err != nil {
		c.log.Warn("skybox unavailable", "error", err)
	}
	re.SetSkyboxColors(
		core.Color{R: 0.01, G: 0.01, B: 0.03, A: 1},
		core.Color{R: 0.04, G: 0.03, B: 0.08, A: 1},
		core.Color{R: 0.01, G: 0.01, B: 0.02, A: 1},
	)
	re.SetFog(false, 0, core.ColorBlack)
	c.log.Info("collider ready", "debris", ctx.Config.Tuning.DebrisCount)
	return nil
}

// buildArena fills the static scene: dark floor, marker grid, one pylon per
// beam, dim key light and colored accents over each pylon.
func (c *Collider) buildArena() {
	floor := scene.NewNode("floor")
	floor.Mesh = c.res.TrackMesh(scene.CreatePlane(44, 44, 8))
	floor.Mesh.Material = scene.NewPBRMaterial("floor", core.Color{R: 0.10, G: 0.10, B: 0.12, A: 1}, 0.1, 0.8)
	c.scene.AddNode(floor)

	grid := scene.NewNode("grid")
	grid.Mesh = c.res.TrackMesh(scene.CreateGrid(44, 22))
	grid.SetPosition(math.Vec3{Y: 0.01})
	c.scene.AddNode(grid)

	for i, x := range [2]float32{-beamReach, beamReach} {
		pylon := scene.NewNode(fmt.Sprintf("pylon_%d", i))
		pylon.Mesh = c.res.TrackMesh(scene.CreateCylinder(0.5, impactHeight, 12))
		pylon.Mesh.Material = scene.NewPBRMaterial("pylon", core.Color{R: 0.25, G: 0.26, B: 0.30, A: 1}, 0.9, 0.3)
		pylon.SetPosition(math.Vec3{X: x, Y: impactHeight / 2})
		c.scene.AddNode(pylon)
	}

	c.scene.Ambient = core.Color{R: 0.05, G: 0.05, B: 0.09, A: 1}
	c.scene.AddLight(scene.NewDirectionalLight(math.Vec3{X: 0.2, Y: -1, Z: 0.3}, 0.5))
	c.scene.AddLight(scene.NewPointLight(math.Vec3{X: -beamReach, Y: impactHeight + 1}, core.Color{R: 0.3, G: 0.6, B: 1, A: 1}, 1.4, 14))
	c.scene.AddLight(scene.NewPointLight(math.Vec3{X: beamReach, Y: impactHeight + 1}, core.Color{R: 1, G: 0.55, B: 0.2, A: 1}, 1.4, 14))

	// One shard mesh per tint; debris nodes share them round-robin.
	tints := [3]core.Color{
		{R: 0.45, G: 0.75, B: 1, A: 1},
		{R: 1, G: 0.6, B: 0.25, A: 1},
		{R: 0.95, G: 0.9, B: 0.6, A: 1},
	}
	for i, tint := range tints {
		mesh := scene.CreateSphere(debrisRadius, 10, 8)
		mesh.Material = scene.NewPBRMaterial(fmt.Sprintf("shard_%d", i), tint, 0.4, 0.35)
		mesh.Material.EmissiveColor = tint.Scale(0.6)
		c.shards[i] = c.res.TrackMesh(mesh)
	}
}

func (c *Collider) buildEmitters() {
	dirs := [2]math.Vec3{{X: 1}, {X: -1}}
	tints := [2]core.Color{
		{R: 0.35, G: 0.65, B: 1, A: 1},
		{R: 1, G: 0.55, B: 0.2, A: 1},
	}
	for i := range c.beams {
		e := scene.NewParticleEmitter(500)
		e.Position = math.Vec3{X: -dirs[i].X * beamReach, Y: impactHeight}
		e.Direction = dirs[i]
		e.Spread = 0.03
		e.MinSpeed, e.MaxSpeed = 13, 15
		e.MinLife, e.MaxLife = 0.65, 0.75 // just enough to reach the origin
		e.MinSize, e.MaxSize = 0.08, 0.2
		e.StartColor = tints[i]
		e.EndColor = core.Color{R: 1, G: 1, B: 1, A: 0.9}
		e.Gravity = math.Vec3Zero
		e.Active = false
		c.beams[i] = e
	}

	c.burst = scene.NewParticleEmitter(600)
	c.burst.Position = impactPoint
	c.burst.Direction = math.Vec3Up
	c.burst.Spread = math.Pi // full sphere
	c.burst.MinSpeed, c.burst.MaxSpeed = 2, 9
	c.burst.MinLife, c.burst.MaxLife = 0.4, 1.1
	c.burst.MinSize, c.burst.MaxSize = 0.1, 0.35
	c.burst.StartColor = core.Color{R: 1, G: 0.92, B: 0.6, A: 1}
	c.burst.EndColor = core.Color{R: 1, G: 0.25, B: 0.05, A: 0}
	c.burst.Active = false // burst only
}

func (c *Collider) setBeams(on bool) {
	for _, b := range c.beams {
		b.Active = on
	}
}

// chargeBeams ramps the stream density over the setup phase.
func (c *Collider) chargeBeams(progress float32) {
	for _, b := range c.beams {
		b.Rate = int(60 + 260*progress)
	}
}

// detonate fires the impact flash and scatters the debris bodies.
func (c *Collider) detonate() {
	c.burst.Burst(180)

	n := c.ctx.Config.Tuning.DebrisCount
	if n <= 0 {
		n = 24
	}
	for i := 0; i < n; i++ {
		node := scene.NewNode(fmt.Sprintf("debris_%d", i))
		node.Mesh = c.shards[i%len(c.shards)]
		c.scene.AddNode(node)

		body := physics.NewSphereBody(debrisRadius, 1)
		body.Position = impactPoint.Add(c.randJitter(0.25))
		body.Restitution = 0.55
		body.Friction = 0.4
		id := c.world.AddBody(body)
		c.world.Bind(node, id)

		dir := math.Vec3{
			X: c.rng.Float32()*2 - 1,
			Y: 1.1 + c.rng.Float32()*0.9,
			Z: c.rng.Float32()*2 - 1,
		}.Normalize()
		speed := 5 + c.rng.Float32()*6
		c.world.ApplyImpulse(id, dir.Mul(speed*body.Mass))
		c.world.SetAngularVelocity(id, c.randJitter(4))

		c.debris = append(c.debris, debris{node: node, body: id})
	}
	c.log.Debug("detonated", "debris", n)
}

func (c *Collider) randJitter(scale float32) math.Vec3 {
	return math.Vec3{
		X: (c.rng.Float32()*2 - 1) * scale,
		Y: (c.rng.Float32()*2 - 1) * scale,
		Z: (c.rng.Float32()*2 - 1) * scale,
	}
}

// fadeDebris shrinks the shards over the cleanup phase. Bodies keep their
// size; this is a purely visual dissolve.
func (c *Collider) fadeDebris(progress float32) {
	s := 1 - 0.9*progress
	for _, d := range c.debris {
		d.node.SetScale(math.Vec3{X: s, Y: s, Z: s})
	}
}

func (c *Collider) clearDebris() {
	for _, d := range c.debris {
		c.world.RemoveBody(d.body)
		c.scene.RemoveNode(d.node)
	}
	c.debris = c.debris[:0]
}

func (c *Collider) Update(dt float32) {
	in := c.ctx.Input
	if in.MouseDown(core.MouseLeft) {
		dx, dy := in.CursorDelta()
		c.cam.Orbit(float32(dx)*0.008, float32(dy)*0.008)
	} else {
		c.cam.Orbit(orbitAutoRate*dt, 0)
	}
	c.cam.Update(dt)

	c.loop.Update(dt)
	c.step.Run(dt, c.world.Step)
	c.world.SyncScene()

	for _, b := range c.beams {
		b.Update(dt)
	}
	c.burst.Update(dt)
}

func (c *Collider) Render() {
	re := c.ctx.Renderer
	if err := re.DrawScene(); err != nil {
		c.log.Error("draw failed", "error", err)
	}
	for _, b := range c.beams {
		re.DrawParticles(b)
	}
	re.DrawParticles(c.burst)

	w, h := c.ctx.Window.Size()
	sw, sh := float32(w), float32(h)

	c.panel.Clear()
	c.panel.AddLine("phase  %s", c.loop.PhaseName())
	c.panel.AddLine("bodies %d", c.world.Count())
	c.panel.AddLine("debris %d", len(c.debris))
	c.panel.Draw(re, sw, sh)

	bar := overlay.LoadingBar{
		Label:    "phase " + c.loop.PhaseName(),
		Progress: c.loop.Progress(),
		Anchor:   overlay.BottomRight,
	}
	bar.Draw(re, sw, sh)
	c.hints.Draw(re, sw, sh)
}

func (c *Collider) Destroy() {
	if c.ctx == nil {
		return
	}
	c.ctx.Input.RemoveScope(c.Name())
	c.clearDebris()
	c.res.Release(c.ctx.Renderer)
	c.world = nil
	c.scene = nil
	c.ctx = nil
}
