package collider

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

// bareCollider wires just enough state to drive the debris lifecycle
// without a window or GL context.
func bareCollider(t *testing.T) *Collider {
	t.Helper()
	c := New()
	c.log = logx.Discard()
	c.rng = rand.New(rand.NewSource(1))
	c.scene = scene.NewScene()
	c.world = physics.NewWorld(math.Vec3{Y: -9.81})
	c.burst = scene.NewParticleEmitter(64)
	for i := range c.shards {
		c.shards[i] = scene.CreateSphere(debrisRadius, 6, 4)
	}
	c.ctx = &scenes.Context{Config: config.Default()}
	return c
}

func TestDetonateSpawnsDebris(t *testing.T) {
	c := bareCollider(t)
	want := c.ctx.Config.Tuning.DebrisCount

	c.detonate()

	require.Len(t, c.debris, want)
	assert.Equal(t, want, c.world.Count())
	assert.Positive(t, c.burst.Count())

	for _, d := range c.debris {
		body := c.world.Body(d.body)
		require.NotNil(t, body)
		assert.Greater(t, body.LinVel.Y, float32(0), "debris scatters upward")
		assert.InDelta(t, impactHeight, body.Position.Y, 0.5)
	}
}

func TestClearDebrisEmptiesWorldAndScene(t *testing.T) {
	c := bareCollider(t)
	before := len(c.scene.Root.Children)
	c.detonate()
	require.NotEmpty(t, c.debris)

	c.clearDebris()

	assert.Empty(t, c.debris)
	assert.Zero(t, c.world.Count())
	assert.Equal(t, before, len(c.scene.Root.Children))
}

func TestFadeDebrisShrinksNodes(t *testing.T) {
	c := bareCollider(t)
	c.detonate()

	c.fadeDebris(0.5)
	for _, d := range c.debris {
		assert.InDelta(t, 0.55, d.node.Transform.Scale.X, 1e-4)
	}
}

func TestDebrisSettlesOntoFloor(t *testing.T) {
	c := bareCollider(t)
	c.world.AddBody(physics.NewStaticPlane(math.Vec3Up, 0))
	c.detonate()

	for i := 0; i < 600; i++ {
		c.world.Step(1.0 / 120.0)
	}
	for _, d := range c.debris {
		body := c.world.Body(d.body)
		assert.Greater(t, body.Position.Y, float32(0), "nothing falls through the floor")
		assert.Less(t, body.Position.Y, float32(impactHeight+20))
	}
}
