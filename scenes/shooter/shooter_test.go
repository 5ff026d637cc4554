package shooter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/config"
	"scenelab/logx"
	"scenelab/math"
	"scenelab/physics"
	"scenelab/scene"
	"scenelab/scenes"
)

// bareShooter wires the combat state without a window or GL context.
func bareShooter(t *testing.T) *Shooter {
	t.Helper()
	s := New()
	s.log = logx.Discard()
	s.rng = rand.New(rand.NewSource(1))
	s.ctx = &scenes.Context{Config: config.Default()}
	s.scene = scene.NewScene()
	s.buildShip()
	s.buildArmory()
	s.resetRun()
	return s
}

func TestSpawnWavePlacesEnemiesBehindSpawnLine(t *testing.T) {
	s := bareShooter(t)
	want := s.ctx.Config.Tuning.WaveSize

	s.spawnWave()

	require.Len(t, s.enemies, want)
	assert.Equal(t, 1, s.wave)
	for id := range s.enemies {
		body := s.world.Body(id)
		require.NotNil(t, body)
		assert.LessOrEqual(t, body.Position.Z, float32(spawnZ))
		assert.Greater(t, body.LinVel.Z, float32(0), "enemies advance toward the rail")
	}
}

func TestFireSpawnsProjectileWithCooldown(t *testing.T) {
	s := bareShooter(t)

	s.fire()
	require.Len(t, s.shots, 1)
	for id := range s.shots {
		body := s.world.Body(id)
		assert.Less(t, body.LinVel.Z, float32(0), "shots fly down the lane")
		assert.InDelta(t, s.ship.Transform.Position.X, body.Position.X, 1e-4)
	}

	// A second fire inside the cooldown window does nothing.
	s.fire()
	assert.Len(t, s.shots, 1)

	s.cooldown = 0
	s.fire()
	assert.Len(t, s.shots, 2)
}

func TestResolveHitsKillsEnemyAndScores(t *testing.T) {
	s := bareShooter(t)
	s.spawnWave()
	require.NotEmpty(t, s.enemies)

	// Park a shot inside the first enemy and let the world find the pair.
	var target physics.BodyID
	for id := range s.enemies {
		target = id
		break
	}
	enemyPos := s.world.Position(target)

	s.fire()
	var shotID physics.BodyID
	for id := range s.shots {
		shotID = id
	}
	s.world.Body(shotID).Position = enemyPos
	s.world.SetLinearVelocity(shotID, math.Vec3Zero)

	s.world.Step(scenes.PhysicsStep)
	s.resolveHits()

	assert.NotContains(t, s.enemies, target, "hit enemy despawns")
	assert.NotContains(t, s.shots, shotID, "hit shot despawns")
	assert.Equal(t, hitScore, s.score)
	assert.Positive(t, s.explosion.Count(), "hit fires the explosion burst")
}

func TestBreachCostsALife(t *testing.T) {
	s := bareShooter(t)
	s.spawnWave()
	livesBefore := s.lives

	var id physics.BodyID
	for bid := range s.enemies {
		id = bid
		break
	}
	s.world.Body(id).Position = math.Vec3{Z: breachZ + 1}

	s.cullExpired(0.016)

	assert.Equal(t, livesBefore-1, s.lives)
	assert.NotContains(t, s.enemies, id)
	assert.False(t, s.gameOver)
}

func TestThirdBreachEndsTheRun(t *testing.T) {
	s := bareShooter(t)
	for s.lives > 0 {
		s.spawnWave()
		for id := range s.enemies {
			s.world.Body(id).Position = math.Vec3{Z: breachZ + 1}
		}
		s.cullExpired(0.016)
		s.sweepStragglers()
	}
	assert.True(t, s.gameOver)
	assert.Zero(t, s.lives)
}

func TestSweepStragglersEscalates(t *testing.T) {
	s := bareShooter(t)
	s.spawnWave()
	require.NotEmpty(t, s.enemies)
	speed := s.enemySpeed

	s.sweepStragglers()

	assert.Empty(t, s.enemies)
	assert.Zero(t, s.world.Count())
	assert.Greater(t, s.enemySpeed, speed)
}

func TestStaleShotsExpire(t *testing.T) {
	s := bareShooter(t)
	s.fire()
	require.Len(t, s.shots, 1)

	s.cullExpired(shotLife + 0.1)
	assert.Empty(t, s.shots)
	assert.Zero(t, s.world.Count())
}

func TestResetRunRestoresBoard(t *testing.T) {
	s := bareShooter(t)
	s.spawnWave()
	s.fire()
	s.score = 900
	s.lives = 1
	s.gameOver = true

	s.resetRun()

	assert.Zero(t, s.score)
	assert.Equal(t, startLives, s.lives)
	assert.Zero(t, s.wave)
	assert.False(t, s.gameOver)
	assert.Empty(t, s.enemies)
	assert.Empty(t, s.shots)
	assert.Zero(t, s.world.Count())
}
