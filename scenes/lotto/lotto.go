// Package lotto is the lottery-machine scene: numbered balls tumble inside a
// drum cage, and one by one the drawn numbers fly out to a display rack. The
// numbers come from the results service, which falls back to the cache and
// then to the built-in demo draw, so the machine always has something to
// draw.
package lotto

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"scenelab/core"
	"scenelab/logx"
	"scenelab/lottery"
	"scenelab/math"
	"scenelab/overlay"
	"scenelab/physics"
	"scenelab/scene"
	"scenelab/scenes"
	"scenelab/scenes/cycle"
)

const (
	drumRadius   = 4.2
	stirInterval = 0.55 // seconds between stir kicks during tumble
	flySeconds   = 0.9  // ball flight time to its rack slot
	drawCount    = 7    // six main numbers plus the bonus
	presentHold  = 7.0  // seconds the finished rack stays up before a redraw
)

type ball struct {
	num    int
	node   *scene.Node
	body   physics.BodyID // 0 once the ball has left the drum
	racked bool
}

// flight animates one drawn ball from the drum to its rack slot.
type flight struct {
	b        *ball
	from, to math.Vec3
	tw       *gween.Tween
}

type fetched struct {
	draw   lottery.Draw
	origin lottery.Origin
}

type Lotto struct {
	log *slog.Logger
	ctx *scenes.Context

	scene *scene.Scene
	cam   *scene.OrbitCamera
	world *physics.World
	loop  *cycle.Cycle
	step  scenes.Stepper
	rng   *rand.Rand

	cage  *scene.Node
	balls []*ball
	byNum map[int]*ball

	draw        lottery.Draw
	origin      lottery.Origin
	haveDraw    bool
	fetchCh     chan fetched
	drawIndex   int // next slot to pull, 0..drawCount
	flights     []*flight
	stirClock   float32
	spin        float32
	presentLeft float32 // present-hold seconds remaining; 0 means not presenting

	panel *overlay.Panel
	hints overlay.HintBar
	res   scenes.Resources
}

func New() *Lotto { return &Lotto{} }

func (l *Lotto) Name() string { return "lottery" }

func (l *Lotto) Init(ctx *scenes.Context) error {
	l.ctx = ctx
	l.log = ctx.Log
	if l.log == nil {
		l.log = logx.Discard()
	}
	l.log = l.log.With("scene", l.Name())
	l.rng = rand.New(rand.NewSource(17))

	l.spin = ctx.Config.Tuning.DrumSpin
	if l.spin <= 0 {
		l.spin = 14
	}

	w, h := ctx.Window.Size()
	l.scene = scene.NewScene()
	l.cam = scene.NewOrbitCamera(math.Vec3{Y: 3.4}, 15, 50, float32(w)/float32(h))
	l.cam.Orbit(0.45, 0.18)
	l.cam.Snap()
	l.scene.SetCamera(&l.cam.Camera)

	l.buildHall()
	l.buildDrum()
	l.spawnBalls(ctx.Config.Tuning.BallCount)
	l.requestDraw()

	// The cycle alternates tumbling and pulling; the present hold runs as
	// a scene timer once the last ball is racked (see Update), because its
	// length is "until the viewer has seen the rack", not a loop beat.
	l.loop = cycle.New(
		cycle.Phase{
			Name:     "tumble",
			Duration: 2.4,
			Update:   func(dt, _ float32) { l.stir(dt) },
		},
		cycle.Phase{
			Name:     "draw",
			Duration: 1.1,
			Enter:    l.pullNext,
		},
	)

	l.panel = overlay.NewPanel("lottery", overlay.TopLeft)
	l.hints = overlay.HintBar{Text: "drag orbit   scroll zoom   r redraw   1-5 scenes"}

	ctx.Input.OnKey(l.Name(), func(key int, pressed bool) {
		if pressed && key == core.KeyR {
			l.returnBalls()
			l.presentLeft = 0
			l.loop.Reset()
			l.step.Reset()
			l.requestDraw()
		}
	})
	ctx.Input.OnScroll(l.Name(), func(dx, dy float64) {
		l.cam.Zoom(float32(-dy) * 1.2)
	})

	re := ctx.Renderer
	re.SetScene(l.scene)
	if err := re.EnableSkybox(); err != nil {
		l.log.Warn("skybox unavailable", "error", err)
	}
	re.SetSkyboxColors(
		core.Color{R: 0.05, G: 0.04, B: 0.10, A: 1},
		core.Color{R: 0.12, G: 0.09, B: 0.20, A: 1},
		core.Color{R: 0.03, G: 0.03, B: 0.06, A: 1},
	)
	re.SetFog(false, 0, core.ColorBlack)
	l.log.Info("lottery ready", "balls", len(l.balls))
	return nil
}

// buildHall is the studio set: dark stage floor and warm key lights.
func (l *Lotto) buildHall() {
	floor := scene.NewNode("stage")
	floor.Mesh = l.res.TrackMesh(scene.CreatePlane(36, 36, 6))
	floor.Mesh.Material = scene.NewPBRMaterial("stage", core.Color{R: 0.09, G: 0.08, B: 0.13, A: 1}, 0.2, 0.6)
	floor.SetPosition(math.Vec3{Y: -0.01})
	l.scene.AddNode(floor)

	l.scene.Ambient = core.Color{R: 0.10, G: 0.09, B: 0.14, A: 1}
	l.scene.AddLight(scene.NewDirectionalLight(math.Vec3{X: -0.3, Y: -1, Z: -0.2}, 0.9))
	l.scene.AddLight(scene.NewPointLight(math.Vec3{X: 5, Y: 7, Z: 5}, core.Color{R: 1, G: 0.9, B: 0.75, A: 1}, 1.1, 24))
	l.scene.AddLight(scene.NewPointLight(math.Vec3{X: -6, Y: 6, Z: -3}, core.Color{R: 0.6, G: 0.7, B: 1, A: 1}, 0.7, 20))
}

// buildDrum builds the visual cage (three torus ribs) and the invisible
// static planes that keep the balls inside. The planes tilt inward so
// settled balls roll back toward the middle.
func (l *Lotto) buildDrum() {
	l.cage = scene.NewNode("drum")
	l.cage.SetPosition(math.Vec3{Y: drumRadius * 0.65})

	ribMat := scene.NewPBRMaterial("drum_rib", core.Color{R: 0.78, G: 0.65, B: 0.25, A: 1}, 0.95, 0.25)
	tilts := [3]float32{0, math.Pi / 3, 2 * math.Pi / 3}
	for _, tilt := range tilts {
		rib := scene.NewNode("drum_rib")
		rib.Mesh = l.res.TrackMesh(scene.CreateTorus(drumRadius, 0.07, 48, 10))
		rib.Mesh.Material = ribMat
		rib.SetRotation(math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, tilt))
		l.cage.AddChild(rib)
	}
	l.scene.AddNode(l.cage)

	// Collision bowl: floor plus four inward-leaning walls.
	l.world = physics.NewWorld(math.Vec3{Y: -l.ctx.Config.Tuning.Gravity})
	l.world.AddBody(physics.NewStaticPlane(math.Vec3Up, 0))
	lean := float32(0.35)
	walls := []math.Vec3{
		{X: 1, Y: lean}, {X: -1, Y: lean},
		{Z: 1, Y: lean}, {Z: -1, Y: lean},
	}
	for _, n := range walls {
		unit := n.Normalize()
		l.world.AddBody(physics.NewStaticPlane(unit, -drumRadius*0.85))
	}
}

// spawnBalls drops count numbered balls into the drum. The drawn numbers are
// guaranteed present later by ensureBalls, so count only sets the crowd size.
func (l *Lotto) spawnBalls(count int) {
	if count <= 0 || count > lottery.MaxBall {
		count = 30
	}
	l.byNum = make(map[int]*ball)
	for n := 1; n <= count; n++ {
		l.addBall(n)
	}
}

// addBall creates the node and body for one numbered ball at a jittered
// position above the drum floor.
func (l *Lotto) addBall(n int) *ball {
	node := scene.NewNode("ball")
	mesh := buildBallMesh(n)
	l.res.TrackMesh(mesh)
	l.res.TrackTexture(mesh.Material.AlbedoTexture)
	node.Mesh = mesh
	l.scene.AddNode(node)

	body := physics.NewSphereBody(ballRadius, 0.05)
	body.Position = math.Vec3{
		X: (l.rng.Float32()*2 - 1) * drumRadius * 0.5,
		Y: 1 + l.rng.Float32()*2.5,
		Z: (l.rng.Float32()*2 - 1) * drumRadius * 0.5,
	}
	body.Restitution = 0.62
	body.Friction = 0.3
	body.Tag = "ball"
	id := l.world.AddBody(body)
	l.world.Bind(node, id)

	b := &ball{num: n, node: node, body: id}
	l.balls = append(l.balls, b)
	l.byNum[n] = b
	return b
}

// requestDraw asks the results chain for the next draw off the frame loop.
// Update polls the channel; until the draw lands the machine just tumbles.
func (l *Lotto) requestDraw() {
	l.haveDraw = false
	l.drawIndex = 0
	ch := make(chan fetched, 1)
	l.fetchCh = ch

	src := l.ctx.Lottery
	if src == nil {
		ch <- fetched{draw: lottery.DemoDraw(), origin: lottery.OriginDemo}
		return
	}
	timeout := time.Duration(l.ctx.Config.Lottery.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	go func() {
		fctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		d, o := src.Next(fctx)
		ch <- fetched{draw: d, origin: o}
	}()
}

// ensureBalls adds any drawn number missing from the crowd, so the draw can
// always be acted out no matter how small the configured ball count is.
func (l *Lotto) ensureBalls(d lottery.Draw) {
	for _, n := range drawSequence(d) {
		if l.byNum[n] == nil {
			l.addBall(n)
		}
	}
}

// drawSequence is the pull order: the six main numbers, then the bonus.
func drawSequence(d lottery.Draw) [drawCount]int {
	var seq [drawCount]int
	copy(seq[:6], d.Numbers[:])
	seq[6] = d.Bonus
	return seq
}

// stir kicks the tumbling balls: every stirInterval each ball in the drum
// gets an upward and tangential impulse so the crowd keeps churning.
func (l *Lotto) stir(dt float32) {
	l.stirClock += dt
	if l.stirClock < stirInterval {
		return
	}
	l.stirClock = 0

	for _, b := range l.balls {
		if b.body == 0 {
			continue
		}
		body := l.world.Body(b.body)
		if body == nil {
			continue
		}
		// Swirl: up, inward, and around the drum axis.
		inward := body.Position.Negate()
		inward.Y = 0
		tangent := math.Vec3{X: -body.Position.Z, Z: body.Position.X}
		kick := math.Vec3{Y: 1.6 + l.rng.Float32()}.
			Add(inward.Mul(0.12)).
			Add(tangent.Normalize().Mul(0.8 + l.rng.Float32()*0.5)).
			Mul(l.spin * body.Mass * 0.1)
		l.world.ApplyImpulse(b.body, kick)
		l.world.SetAngularVelocity(b.body, math.Vec3{
			X: (l.rng.Float32()*2 - 1) * 6,
			Y: (l.rng.Float32()*2 - 1) * 6,
			Z: (l.rng.Float32()*2 - 1) * 6,
		})
	}
}

// pullNext takes the next drawn number's ball out of the physics world and
// starts its flight to the rack. Without a draw yet the pull is skipped and
// the cycle keeps tumbling.
func (l *Lotto) pullNext() {
	if !l.haveDraw || l.drawIndex >= drawCount {
		return
	}
	n := drawSequence(l.draw)[l.drawIndex]
	b := l.byNum[n]
	if b == nil || b.racked {
		l.drawIndex++
		return
	}

	from := l.world.Position(b.body)
	l.world.RemoveBody(b.body)
	b.body = 0
	b.racked = true
	b.node.SetPosition(from)

	l.flights = append(l.flights, &flight{
		b:    b,
		from: from,
		to:   rackSlot(l.drawIndex),
		tw:   gween.New(0, 1, flySeconds, ease.OutCubic),
	})
	l.log.Debug("ball drawn", "number", n, "slot", l.drawIndex)
	l.drawIndex++
}

// returnBalls drops every racked ball back into the drum.
func (l *Lotto) returnBalls() {
	l.flights = l.flights[:0]
	for _, b := range l.balls {
		if !b.racked {
			continue
		}
		b.racked = false
		body := physics.NewSphereBody(ballRadius, 0.05)
		body.Position = math.Vec3{
			X: (l.rng.Float32()*2 - 1) * drumRadius * 0.4,
			Y: 2 + l.rng.Float32()*2,
			Z: (l.rng.Float32()*2 - 1) * drumRadius * 0.4,
		}
		body.Restitution = 0.62
		body.Friction = 0.3
		body.Tag = "ball"
		b.body = l.world.AddBody(body)
		l.world.Bind(b.node, b.body)
	}
	l.drawIndex = 0
}

func (l *Lotto) Update(dt float32) {
	in := l.ctx.Input
	if in.MouseDown(core.MouseLeft) {
		dx, dy := in.CursorDelta()
		l.cam.Orbit(float32(dx)*0.008, float32(dy)*0.008)
	} else {
		l.cam.Orbit(0.1*dt, 0)
	}
	l.cam.Update(dt)

	if l.fetchCh != nil {
		select {
		case got := <-l.fetchCh:
			l.fetchCh = nil
			l.draw = got.draw
			l.origin = got.origin
			l.haveDraw = true
			l.ensureBalls(got.draw)
			l.log.Info("draw ready", "date", got.draw.Date, "origin", got.origin.String())
		default:
		}
	}

	l.cage.Rotate(math.Vec3{Z: 1}, 0.6*dt)

	switch {
	case l.presentLeft > 0:
		l.presentLeft -= dt
		if l.presentLeft <= 0 {
			l.presentLeft = 0
			l.returnBalls()
			l.loop.Reset()
		}
	case l.drawIndex >= drawCount && len(l.flights) == 0:
		l.presentLeft = presentHold
	default:
		l.loop.Update(dt)
	}

	l.step.Run(dt, l.world.Step)
	l.world.SyncScene()

	for i := 0; i < len(l.flights); {
		fl := l.flights[i]
		t, done := fl.tw.Update(dt)
		pos := fl.from.Lerp(fl.to, t)
		// A little arc so the ball pops up out of the drum first.
		pos.Y += math32.Sin(t*math.Pi) * 1.6
		fl.b.node.SetPosition(pos)
		if done {
			fl.b.node.SetPosition(fl.to)
			l.flights[i] = l.flights[len(l.flights)-1]
			l.flights = l.flights[:len(l.flights)-1]
			continue
		}
		i++
	}

	// Racked balls face the camera and spin gently in place.
	for _, b := range l.balls {
		if b.racked {
			b.node.Rotate(math.Vec3Up, 0.8*dt)
		}
	}
}

func (l *Lotto) Render() {
	re := l.ctx.Renderer
	if err := re.DrawScene(); err != nil {
		l.log.Error("draw failed", "error", err)
	}

	w, h := l.ctx.Window.Size()
	sw, sh := float32(w), float32(h)

	l.panel.Clear()
	if l.haveDraw {
		l.panel.AddLine("draw   %s (%s)", l.draw.Date, l.origin)
	} else {
		l.panel.AddLine("draw   fetching...")
	}
	seq := drawSequence(l.draw)
	var line strings.Builder
	for i := 0; i < l.drawIndex && i < 6; i++ {
		fmt.Fprintf(&line, " %2d", seq[i])
	}
	if line.Len() > 0 {
		l.panel.AddLine("drawn %s", line.String())
	}
	if l.drawIndex >= drawCount {
		l.panel.AddLine("bonus  %d", l.draw.Bonus)
	}
	phase := l.loop.PhaseName()
	if l.presentLeft > 0 {
		phase = "present"
	}
	l.panel.AddLine("phase  %s", phase)
	l.panel.Draw(re, sw, sh)
	l.hints.Draw(re, sw, sh)
}

func (l *Lotto) Destroy() {
	if l.ctx == nil {
		return
	}
	l.ctx.Input.RemoveScope(l.Name())
	l.res.Release(l.ctx.Renderer)
	l.flights = nil
	l.balls = nil
	l.byNum = nil
	l.world = nil
	l.scene = nil
	l.ctx = nil
}
