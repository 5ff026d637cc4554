package scene

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/core"
	"scenelab/math"
)

func TestEmitterSpawnRate(t *testing.T) {
	e := NewParticleEmitter(1000)
	e.Rate = 100
	e.MinLife, e.MaxLife = 10, 10
	e.Update(0.5)
	assert.Equal(t, 50, e.Count())
}

func TestEmitterPoolCap(t *testing.T) {
	e := NewParticleEmitter(10)
	e.Rate = 1000
	e.MinLife, e.MaxLife = 10, 10
	e.Update(1)
	assert.Equal(t, 10, e.Count())
}

func TestEmitterInactiveStopsSpawning(t *testing.T) {
	e := NewParticleEmitter(100)
	e.Active = false
	e.Update(1)
	assert.Equal(t, 0, e.Count())
}

func TestEmitterExpiryCompacts(t *testing.T) {
	e := NewParticleEmitter(100)
	e.MinLife, e.MaxLife = 1, 1
	e.Burst(20)
	require.Equal(t, 20, e.Count())

	e.Active = false
	e.Update(0.5)
	assert.Equal(t, 20, e.Count())
	e.Update(0.6)
	assert.Equal(t, 0, e.Count(), "expired particles are compacted away")
}

func TestEmitterBurstRespectsPool(t *testing.T) {
	e := NewParticleEmitter(5)
	e.Burst(50)
	assert.Equal(t, 5, e.Count())
}

func TestEmitterGravityPullsVelocity(t *testing.T) {
	e := NewParticleEmitter(10)
	e.Active = false
	e.MinLife, e.MaxLife = 10, 10
	e.MinSpeed, e.MaxSpeed = 0, 0
	e.Gravity = math.Vec3{Y: -9.8}
	e.Burst(1)

	e.Update(1)
	require.Equal(t, 1, e.Count())
	assert.InDelta(t, -9.8, float64(e.Particles[0].Velocity.Y), 0.01)
	assert.Less(t, e.Particles[0].Position.Y, float32(0))
}

func TestEmitterColorAndSizeOverLifetime(t *testing.T) {
	e := NewParticleEmitter(10)
	e.Active = false
	e.MinLife, e.MaxLife = 10, 10
	e.MinSpeed, e.MaxSpeed = 0, 0
	e.MinSize, e.MaxSize = 0.1, 0.3
	e.StartColor = core.Color{R: 1, A: 1}
	e.EndColor = core.Color{B: 1}
	e.Gravity = math.Vec3Zero
	e.Burst(1)

	e.Update(5) // half of the lifetime
	require.Equal(t, 1, e.Count())
	p := e.Particles[0]
	assert.InDelta(t, 0.5, float64(p.Color.R), 0.001)
	assert.InDelta(t, 0.5, float64(p.Color.B), 0.001)
	assert.InDelta(t, 0.5, float64(p.Color.A), 0.001)
	assert.InDelta(t, 0.2, float64(p.Size), 0.001, "size shrinks toward MinSize")
}

func TestRandomInConeStaysInsideCone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	axis := math.Vec3{Y: 1}
	cosMin := math32.Cos(0.3)
	for i := 0; i < 200; i++ {
		d := randomInCone(axis, 0.3, rng)
		assert.InDelta(t, 1.0, float64(d.Length()), 0.001)
		require.GreaterOrEqual(t, d.Dot(axis), cosMin-0.001)
	}
}

func TestRandomInConeHandlesAxisAlignedWithUp(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	// Axis parallel to the default frame-building up vector.
	d := randomInCone(math.Vec3{Y: 1}, 0, rng)
	requireVec3Near(t, math.Vec3{Y: 1}, d)
}
