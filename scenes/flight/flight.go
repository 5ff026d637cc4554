// Package flight is the free-flight scene: a banking fly camera over an
// endless value-noise terrain, an aircraft model streamed in the background,
// a contrail emitter, and a full day/night sky cycle.
package flight

import (
	"context"
	"log/slog"

	"github.com/chewxy/math32"

	"scenelab/assets"
	"scenelab/core"
	"scenelab/logx"
	"scenelab/math"
	"scenelab/overlay"
	"scenelab/scene"
	"scenelab/scenes"
)

const (
	terrainSize  = 1600
	terrainCells = 200
	terrainPeak  = 90
	terrainSeed  = 7
	minClearance = 4   // minimum height above ground
	maxAltitude  = 420 // soft ceiling
)

type Flight struct {
	log *slog.Logger
	ctx *scenes.Context

	scene    *scene.Scene
	cam      *scene.FlyCamera
	terrain  *Terrain
	aircraft *scene.Node
	sun      *scene.Light
	cycle    *DayNight
	contrail *scene.ParticleEmitter
	pending  *assets.ModelHandle
	panel    *overlay.Panel
	hints    overlay.HintBar
	res      scenes.Resources

	throttle float32
	cruise   float32
}

func New() *Flight { return &Flight{} }

func (f *Flight) Name() string { return "flight" }

func (f *Flight) Init(ctx *scenes.Context) error {
	f.ctx = ctx
	f.log = ctx.Log
	if f.log == nil {
		f.log = logx.Discard()
	}
	f.log = f.log.With("scene", f.Name())

	f.cruise = ctx.Config.Tuning.FlightSpeed
	if f.cruise <= 0 {
		f.cruise = 22
	}
	f.throttle = 0.5

	w, h := ctx.Window.Size()
	f.scene = scene.NewScene()
	f.cam = scene.NewFlyCamera(60, float32(w)/float32(h))
	f.cam.SetPosition(math.Vec3{Y: 70, Z: 220})
	f.scene.SetCamera(&f.cam.Camera)

	f.terrain = NewTerrain(terrainSize, terrainCells, terrainPeak, terrainSeed)
	ground := scene.NewNode("terrain")
	ground.Mesh = f.res.TrackMesh(f.terrain.BuildMesh())
	ground.Mesh.Material = scene.NewMaterial("terrain", core.ColorWhite)
	ground.Mesh.Material.Specular = core.Color{R: 0.05, G: 0.05, B: 0.05, A: 1}
	ground.Mesh.Material.Shininess = 8
	f.scene.AddNode(ground)

	f.sun = scene.NewDirectionalLight(math.Vec3{X: 0.3, Y: -1, Z: 0.2}, 1)
	f.scene.AddLight(f.sun)
	f.cycle = NewDayNight()

	// Placeholder hull until the real model arrives. A failed download
	// keeps the placeholder, so there is always an aircraft on screen.
	f.aircraft = scene.NewNode("aircraft")
	hull := scene.NewNode("aircraft_hull")
	hull.Mesh = f.res.TrackMesh(scene.CreatePyramid(1.4, 2.6))
	hull.Mesh.Material = scene.NewPBRMaterial("hull", core.Color{R: 0.74, G: 0.77, B: 0.82, A: 1}, 0.8, 0.35)
	hull.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, -math.Pi/2))
	f.aircraft.AddChild(hull)
	f.scene.AddNode(f.aircraft)
	f.pending = ctx.Assets.LoadModelAsync(context.Background(), "models/aircraft.glb")

	f.contrail = scene.NewSmokeEmitter(600)
	f.contrail.MinLife, f.contrail.MaxLife = 0.8, 1.8
	f.contrail.MinSize, f.contrail.MaxSize = 0.15, 0.45
	f.contrail.MinSpeed, f.contrail.MaxSpeed = 0.5, 1.5
	f.contrail.Spread = 0.1
	f.contrail.StartColor = core.Color{R: 0.95, G: 0.97, B: 1, A: 0.6}
	f.contrail.EndColor = core.Color{R: 0.9, G: 0.92, B: 0.95, A: 0}
	f.contrail.Gravity = math.Vec3Zero

	f.panel = overlay.NewPanel("flight", overlay.TopLeft)
	f.hints = overlay.HintBar{Text: "arrows steer   w/s throttle   right-drag look   t day cycle   1-5 scenes"}

	ctx.Input.OnKey(f.Name(), func(key int, pressed bool) {
		if pressed && key == core.KeyT {
			f.cycle.Active = !f.cycle.Active
		}
	})

	re := ctx.Renderer
	re.SetScene(f.scene)
	if err := re.EnableSkybox(); err != nil {
		f.log.Warn("skybox unavailable", "error", err)
	}
	f.cycle.Apply(re, f.scene, f.sun)
	f.log.Info("flight ready", "terrain_cells", terrainCells, "cruise", f.cruise)
	return nil
}

func (f *Flight) Update(dt float32) {
	in := f.ctx.Input

	if in.KeyDown(core.KeyW) {
		f.throttle = math.Clamp01(f.throttle + dt*0.4)
	}
	if in.KeyDown(core.KeyS) {
		f.throttle = math.Clamp01(f.throttle - dt*0.4)
	}

	var yaw, pitch float32
	if in.KeyDown(core.KeyLeft) {
		yaw -= 1
	}
	if in.KeyDown(core.KeyRight) {
		yaw += 1
	}
	if in.KeyDown(core.KeyUp) {
		pitch += 1
	}
	if in.KeyDown(core.KeyDown) {
		pitch -= 1
	}
	if in.MouseDown(core.MouseRight) {
		dx, dy := in.CursorDelta()
		yaw += math.Clamp(float32(dx)*0.05, -1, 1)
		pitch -= math.Clamp(float32(dy)*0.05, -1, 1)
	}

	f.cam.Speed = speedFor(f.throttle, f.cruise)
	f.cam.Steer(yaw, pitch, dt)

	// Fold the position back into one terrain tile and keep clear of the
	// ground. The noise is periodic, so the wrap never shows.
	pos := f.cam.Position
	pos.X = wrapCoord(pos.X, terrainSize)
	pos.Z = wrapCoord(pos.Z, terrainSize)
	if floor := f.terrain.HeightAt(pos.X, pos.Z) + minClearance; pos.Y < floor {
		pos.Y = floor
	}
	if pos.Y > maxAltitude {
		pos.Y = maxAltitude
	}
	f.cam.SetPosition(pos)

	f.placeAircraft()
	f.cycle.Update(dt)
	f.cycle.Apply(f.ctx.Renderer, f.scene, f.sun)
	f.updateContrail(dt)
	f.finishModelLoad()
}

// speedFor maps throttle 0..1 onto the speed band around cruise.
func speedFor(throttle, cruise float32) float32 {
	return math.Lerp(cruise*0.45, cruise*1.8, math.Clamp01(throttle))
}

// placeAircraft keeps the hull ahead of and slightly below the camera,
// mirroring the camera's bank so turns read on the model.
func (f *Flight) placeAircraft() {
	fwd := f.cam.Forward()
	f.aircraft.SetPosition(f.cam.Position.Add(fwd.Mul(9)).Sub(math.Vec3Up.Mul(1.8)))

	yawQ := math.QuaternionFromAxisAngle(math.Vec3Up, f.cam.Yaw)
	pitchQ := math.QuaternionFromAxisAngle(math.Vec3Right, f.cam.Pitch)
	rollQ := math.QuaternionFromAxisAngle(math.Vec3Back, f.cam.Roll)
	f.aircraft.SetRotation(yawQ.Mul(pitchQ).Mul(rollQ))
}

func (f *Flight) updateContrail(dt float32) {
	fwd := f.cam.Forward()
	f.contrail.Position = f.aircraft.Transform.Position.Sub(fwd.Mul(1.6))
	f.contrail.Direction = fwd.Negate()
	f.contrail.Active = f.throttle > 0.15
	f.contrail.Rate = int(40 + 140*f.throttle)
	f.contrail.Update(dt)
}

// finishModelLoad swaps the placeholder for the streamed model once the
// loader is done. Errors keep the placeholder.
func (f *Flight) finishModelLoad() {
	if f.pending == nil || !f.pending.Done() {
		return
	}
	handle := f.pending
	f.pending = nil

	if err := handle.Err(); err != nil {
		f.log.Warn("aircraft model unavailable, keeping placeholder", "error", err)
		return
	}
	model := handle.Model()
	if model == nil || model.Root == nil {
		return
	}

	for len(f.aircraft.Children) > 0 {
		f.aircraft.RemoveChild(f.aircraft.Children[0])
	}
	f.aircraft.AddChild(model.Root)
	f.res.TrackTree(model.Root)
	for _, tex := range model.Textures {
		if err := f.ctx.Renderer.UploadTexture(tex); err != nil {
			f.log.Warn("texture upload failed", "texture", tex.Name, "error", err)
		}
		f.res.TrackTexture(tex)
	}
	f.log.Info("aircraft model attached", "textures", len(model.Textures))
}

func (f *Flight) Render() {
	re := f.ctx.Renderer
	if err := re.DrawScene(); err != nil {
		f.log.Error("draw failed", "error", err)
	}
	re.DrawParticles(f.contrail)

	w, h := f.ctx.Window.Size()
	sw, sh := float32(w), float32(h)

	agl := f.cam.Position.Y - f.terrain.HeightAt(f.cam.Position.X, f.cam.Position.Z)
	heading := math32.Mod(math.Degrees(-f.cam.Yaw)+360, 360)
	f.panel.Clear()
	f.panel.AddLine("speed    %5.1f", f.cam.Speed)
	f.panel.AddLine("altitude %5.1f", agl)
	f.panel.AddLine("heading  %03.0f", heading)
	f.panel.AddLine("clock    %s", f.cycle.TimeOfDayStr())
	f.panel.Draw(re, sw, sh)

	if f.pending != nil {
		bar := overlay.LoadingBar{
			Label:    "loading aircraft",
			Progress: f.ctx.Assets.Progress(),
			Anchor:   overlay.BottomRight,
		}
		bar.Draw(re, sw, sh)
	}
	f.hints.Draw(re, sw, sh)
}

func (f *Flight) Destroy() {
	if f.ctx == nil {
		return
	}
	f.ctx.Input.RemoveScope(f.Name())
	f.res.Release(f.ctx.Renderer)
	f.pending = nil
	f.contrail = nil
	f.aircraft = nil
	f.scene = nil
	f.ctx = nil
}
