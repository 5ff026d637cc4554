// Package shooter is the arcade scene: a ship on a lateral rail fires at
// enemy waves marching down the lane. Projectiles and enemies live in the
// physics world; hits come out of its contact list. Waves are paced by a
// spawn, combat, cleanup cycle that escalates each time it wraps.
package shooter

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
	railLimit   = 9    // half-width of the player rail
	railZ       = 12   // player lane depth
	spawnZ      = -30  // enemies appear here
	breachZ     = 14.5 // an enemy past this line costs a life
	shipSpeed   = 14
	shotSpeed   = 34
	shotRadius  = 0.18
	shotLife    = 1.6 // seconds before a stray shot despawns
	fireCool    = 0.22
	enemyHalf   = 0.7 // enemy box half-extent
	startLives  = 3
	hitScore    = 100
	escalation  = 1.12 // enemy speed multiplier per wave
	combatHold  = 8.0
	cleanupHold = 1.2
)

type enemy struct {
	node *scene.Node
	body physics.BodyID
}

type shot struct {
	node *scene.Node
	body physics.BodyID
	age  float32
}

type Shooter struct {
	log *slog.Logger
	ctx *scenes.Context

	scene *scene.Scene
	cam   *scene.Camera
	world *physics.World
	loop  *cycle.Cycle
	step  scenes.Stepper
	rng   *rand.Rand

	ship      *scene.Node
	enemies   map[physics.BodyID]*enemy
	shots     map[physics.BodyID]*shot
	explosion *scene.ParticleEmitter
	enemyMesh *scene.Mesh
	shotMesh  *scene.Mesh

	score      int
	lives      int
	wave       int
	enemySpeed float32
	cooldown   float32
	gameOver   bool

	board overlay.Scoreboard
	panel *overlay.Panel
	hints overlay.HintBar
	res   scenes.Resources
}

func New() *Shooter { return &Shooter{} }

func (s *Shooter) Name() string { return "shooter" }

func (s *Shooter) Init(ctx *scenes.Context) error {
	s.ctx = ctx
	s.log = ctx.Log
	if s.log == nil {
		s.log = logx.Discard()
	}
	s.log = s.log.With("scene", s.Name())
	s.rng = rand.New(rand.NewSource(4))

	w, h := ctx.Window.Size()
	s.scene = scene.NewScene()
	s.cam = scene.NewCamera(55, float32(w)/float32(h), 0.1, 300)
	s.cam.SetPosition(math.Vec3{Y: 14, Z: railZ + 14})
	s.cam.LookAt(math.Vec3{Y: 0, Z: -4}, math.Vec3Up)
	s.scene.SetCamera(s.cam)

	s.buildLane()
	s.buildShip()
	s.buildArmory()
	s.resetRun()

	tun := ctx.Config.Tuning
	spawnHold := tun.WaveSeconds
	if spawnHold <= 0 {
		spawnHold = 3
	}
	s.loop = cycle.New(
		cycle.Phase{
			Name:     "spawn",
			Duration: spawnHold,
			Enter:    s.spawnWave,
		},
		cycle.Phase{
			Name:     "combat",
			Duration: combatHold,
		},
		cycle.Phase{
			Name:     "cleanup",
			Duration: cleanupHold,
			Enter:    s.sweepStragglers,
		},
	)

	s.board = overlay.Scoreboard{Anchor: overlay.TopRight}
	s.panel = overlay.NewPanel("shooter", overlay.TopLeft)
	s.hints = overlay.HintBar{Text: "a/d move   space fire   r restart   1-5 scenes"}

	ctx.Input.OnKey(s.Name(), func(key int, pressed bool) {
		if pressed && key == core.KeyR {
			s.resetRun()
			s.loop.Reset()
			s.step.Reset()
		}
	})

	re := ctx.Renderer
	re.SetScene(s.scene)
	if err := re.EnableSkybox(); err != nil {
		s.log.Warn("skybox unavailable", "error", err)
	}
	re.SetSkyboxColors(
		core.Color{R: 0.02, G: 0.01, B: 0.05, A: 1},
		core.Color{R: 0.07, G: 0.04, B: 0.12, A: 1},
		core.Color{R: 0.01, G: 0.01, B: 0.03, A: 1},
	)
	re.SetFog(true, 0.012, core.Color{R: 0.04, G: 0.02, B: 0.08, A: 1})
	s.log.Info("shooter ready", "wave_size", tun.WaveSize)
	return nil
}

// buildLane lays the play field: a long dark strip with edge rails and
// cool accent lighting.
func (s *Shooter) buildLane() {
	lane := scene.NewNode("lane")
	lane.Mesh = s.res.TrackMesh(scene.CreatePlane(2*railLimit+6, 60, 6))
	lane.Mesh.Material = scene.NewPBRMaterial("lane", core.Color{R: 0.07, G: 0.07, B: 0.11, A: 1}, 0.1, 0.7)
	lane.SetPosition(math.Vec3{Z: -8})
	s.scene.AddNode(lane)

	railMat := scene.NewPBRMaterial("rail", core.Color{R: 0.2, G: 0.5, B: 0.9, A: 1}, 0.6, 0.3)
	railMat.EmissiveColor = core.Color{R: 0.1, G: 0.3, B: 0.8, A: 1}
	for _, x := range [2]float32{-railLimit - 1.5, railLimit + 1.5} {
		rail := scene.NewNode("rail")
		rail.Mesh = s.res.TrackMesh(scene.CreateCylinder(0.12, 60, 8))
		rail.Mesh.Material = railMat
		rail.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, math.Pi/2))
		rail.SetPosition(math.Vec3{X: x, Y: 0.3, Z: -8})
		s.scene.AddNode(rail)
	}

	s.scene.Ambient = core.Color{R: 0.06, G: 0.05, B: 0.10, A: 1}
	s.scene.AddLight(scene.NewDirectionalLight(math.Vec3{X: 0.25, Y: -1, Z: 0.1}, 0.7))
	s.scene.AddLight(scene.NewPointLight(math.Vec3{Y: 6, Z: railZ}, core.Color{R: 0.5, G: 0.7, B: 1, A: 1}, 0.9, 22))
}

// buildShip assembles the player: a cone fuselage with stub wings.
func (s *Shooter) buildShip() {
	s.ship = scene.NewNode("ship")

	hull := scene.NewNode("ship_hull")
	hull.Mesh = s.res.TrackMesh(scene.CreateCone(0.55, 1.8, 12))
	hull.Mesh.Material = scene.NewPBRMaterial("ship_hull", core.Color{R: 0.75, G: 0.78, B: 0.85, A: 1}, 0.85, 0.3)
	hull.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, -math.Pi/2))
	s.ship.AddChild(hull)

	wings := scene.NewNode("ship_wings")
	wings.Mesh = s.res.TrackMesh(scene.CreateCube(1))
	wings.Mesh.Material = scene.NewPBRMaterial("ship_wings", core.Color{R: 0.35, G: 0.4, B: 0.55, A: 1}, 0.7, 0.4)
	wings.SetScale(math.Vec3{X: 2.4, Y: 0.12, Z: 0.6})
	wings.SetPosition(math.Vec3{Z: 0.4})
	s.ship.AddChild(wings)

	s.ship.SetPosition(math.Vec3{Y: 0.6, Z: railZ})
	s.scene.AddNode(s.ship)
}

// buildArmory creates the shared meshes and the explosion emitter.
func (s *Shooter) buildArmory() {
	s.enemyMesh = s.res.TrackMesh(scene.CreateCube(2 * enemyHalf))
	s.enemyMesh.Material = scene.NewPBRMaterial("enemy", core.Color{R: 0.85, G: 0.2, B: 0.25, A: 1}, 0.5, 0.45)
	s.enemyMesh.Material.EmissiveColor = core.Color{R: 0.4, G: 0.04, B: 0.05, A: 1}

	s.shotMesh = s.res.TrackMesh(scene.CreateSphere(shotRadius, 8, 6))
	s.shotMesh.Material = scene.NewPBRMaterial("shot", core.Color{R: 1, G: 0.9, B: 0.4, A: 1}, 0.2, 0.3)
	s.shotMesh.Material.EmissiveColor = core.Color{R: 1, G: 0.8, B: 0.2, A: 1}

	s.explosion = scene.NewParticleEmitter(400)
	s.explosion.Direction = math.Vec3Up
	s.explosion.Spread = math.Pi
	s.explosion.MinSpeed, s.explosion.MaxSpeed = 3, 10
	s.explosion.MinLife, s.explosion.MaxLife = 0.3, 0.8
	s.explosion.MinSize, s.explosion.MaxSize = 0.1, 0.4
	s.explosion.StartColor = core.Color{R: 1, G: 0.75, B: 0.3, A: 1}
	s.explosion.EndColor = core.Color{R: 0.9, G: 0.15, B: 0.05, A: 0}
	s.explosion.Gravity = math.Vec3Zero
	s.explosion.Active = false
}

// resetRun clears the board and starts over from wave one. Also the initial
// state, so Init just calls it.
func (s *Shooter) resetRun() {
	for id := range s.enemies {
		s.despawnEnemy(id)
	}
	for id := range s.shots {
		s.despawnShot(id)
	}
	// Projectiles fly level: combat happens on a plane.
	s.world = physics.NewWorld(math.Vec3Zero)
	s.enemies = make(map[physics.BodyID]*enemy)
	s.shots = make(map[physics.BodyID]*shot)
	s.score = 0
	s.lives = startLives
	s.wave = 0
	s.enemySpeed = 3.2
	s.cooldown = 0
	s.gameOver = false
	s.ship.SetPosition(math.Vec3{Y: 0.6, Z: railZ})
}

// spawnWave drops the next wave across the spawn line.
func (s *Shooter) spawnWave() {
	if s.gameOver {
		return
	}
	s.wave++
	n := s.ctx.Config.Tuning.WaveSize
	if n <= 0 {
		n = 6
	}
	for i := 0; i < n; i++ {
		node := scene.NewNode(fmt.Sprintf("enemy_w%d_%d", s.wave, i))
		node.Mesh = s.enemyMesh
		s.scene.AddNode(node)

		body := physics.NewBoxBody(math.Vec3{X: enemyHalf, Y: enemyHalf, Z: enemyHalf}, 1)
		body.Position = math.Vec3{
			X: (float32(i)+0.5)/float32(n)*2*railLimit - railLimit,
			Y: 0.7,
			Z: spawnZ - s.rng.Float32()*6,
		}
		body.Tag = "enemy"
		id := s.world.AddBody(body)
		s.world.Bind(node, id)
		s.world.SetLinearVelocity(id, math.Vec3{
			X: (s.rng.Float32()*2 - 1) * 0.8,
			Z: s.enemySpeed,
		})
		s.world.SetAngularVelocity(id, math.Vec3{Y: (s.rng.Float32()*2 - 1) * 2})

		s.enemies[id] = &enemy{node: node, body: id}
	}
	s.log.Debug("wave spawned", "wave", s.wave, "enemies", n)
}

// sweepStragglers ends the wave: surviving enemies despawn and the next
// wave flies faster.
func (s *Shooter) sweepStragglers() {
	for id := range s.enemies {
		s.despawnEnemy(id)
	}
	s.enemySpeed *= escalation
}

func (s *Shooter) fire() {
	if s.cooldown > 0 || s.gameOver {
		return
	}
	s.cooldown = fireCool

	node := scene.NewNode("shot")
	node.Mesh = s.shotMesh
	s.scene.AddNode(node)

	muzzle := s.ship.Transform.Position.Add(math.Vec3{Z: -1.2})
	body := physics.NewSphereBody(shotRadius, 0.1)
	body.Position = muzzle
	body.Tag = "shot"
	id := s.world.AddBody(body)
	s.world.Bind(node, id)
	s.world.SetLinearVelocity(id, math.Vec3{Z: -shotSpeed})

	s.shots[id] = &shot{node: node, body: id}
}

func (s *Shooter) despawnEnemy(id physics.BodyID) {
	e, ok := s.enemies[id]
	if !ok {
		return
	}
	s.world.RemoveBody(id)
	s.scene.RemoveNode(e.node)
	delete(s.enemies, id)
}

func (s *Shooter) despawnShot(id physics.BodyID) {
	sh, ok := s.shots[id]
	if !ok {
		return
	}
	s.world.RemoveBody(id)
	s.scene.RemoveNode(sh.node)
	delete(s.shots, id)
}

// resolveHits walks the last step's contact pairs and turns shot/enemy
// touches into kills.
func (s *Shooter) resolveHits() {
	for _, c := range s.world.Contacts() {
		shotID, enemyID, ok := s.classify(c)
		if !ok {
			continue
		}
		e := s.enemies[enemyID]
		if e == nil {
			continue // already despawned by an earlier contact this step
		}
		s.explosion.Position = s.world.Position(enemyID)
		s.explosion.Burst(60)
		s.despawnEnemy(enemyID)
		s.despawnShot(shotID)
		s.score += hitScore
	}
}

// classify maps a contact onto a (shot, enemy) pair, in either order.
func (s *Shooter) classify(c physics.Contact) (shotID, enemyID physics.BodyID, ok bool) {
	if _, isShot := s.shots[c.A]; isShot {
		if _, isEnemy := s.enemies[c.B]; isEnemy {
			return c.A, c.B, true
		}
		return 0, 0, false
	}
	if _, isShot := s.shots[c.B]; isShot {
		if _, isEnemy := s.enemies[c.A]; isEnemy {
			return c.B, c.A, true
		}
	}
	return 0, 0, false
}

// cullExpired retires shots past their lifetime and enemies past the breach
// line. A breach costs a life.
func (s *Shooter) cullExpired(dt float32) {
	for id, sh := range s.shots {
		sh.age += dt
		if sh.age > shotLife {
			s.despawnShot(id)
		}
	}
	for id := range s.enemies {
		if s.world.Position(id).Z > breachZ {
			s.despawnEnemy(id)
			if s.lives > 0 {
				s.lives--
			}
			if s.lives == 0 && !s.gameOver {
				s.gameOver = true
				s.log.Info("game over", "score", s.score, "wave", s.wave)
			}
		}
	}
}

func (s *Shooter) Update(dt float32) {
	in := s.ctx.Input

	if !s.gameOver {
		var move float32
		if in.KeyDown(core.KeyA) || in.KeyDown(core.KeyLeft) {
			move -= 1
		}
		if in.KeyDown(core.KeyD) || in.KeyDown(core.KeyRight) {
			move += 1
		}
		pos := s.ship.Transform.Position
		pos.X = math.Clamp(pos.X+move*shipSpeed*dt, -railLimit, railLimit)
		s.ship.SetPosition(pos)
		// Bank into the motion.
		s.ship.SetRotation(math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, -move*0.35))

		if s.cooldown > 0 {
			s.cooldown -= dt
		}
		if in.KeyDown(core.KeySpace) {
			s.fire()
		}

		s.loop.Update(dt)
	}

	s.step.Run(dt, func(h float32) {
		s.world.Step(h)
		s.resolveHits()
	})
	s.world.SyncScene()
	s.cullExpired(dt)
	s.explosion.Update(dt)
}

func (s *Shooter) Render() {
	re := s.ctx.Renderer
	if err := re.DrawScene(); err != nil {
		s.log.Error("draw failed", "error", err)
	}
	re.DrawParticles(s.explosion)

	w, h := s.ctx.Window.Size()
	sw, sh := float32(w), float32(h)

	s.board.Score = s.score
	s.board.Lives = s.lives
	s.board.Wave = s.wave
	s.board.Draw(re, sw, sh)

	s.panel.Clear()
	s.panel.AddLine("phase   %s", s.loop.PhaseName())
	s.panel.AddLine("enemies %d", len(s.enemies))
	if s.gameOver {
		s.panel.AddLine("GAME OVER - press r")
	}
	s.panel.Draw(re, sw, sh)
	s.hints.Draw(re, sw, sh)
}

func (s *Shooter) Destroy() {
	if s.ctx == nil {
		return
	}
	s.ctx.Input.RemoveScope(s.Name())
	s.res.Release(s.ctx.Renderer)
	s.enemies = nil
	s.shots = nil
	s.world = nil
	s.scene = nil
	s.ctx = nil
}
