package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

// recordedPose captures SyncScene writes without pulling in the scene graph.
type recordedPose struct {
	pos   math.Vec3
	rot   math.Quaternion
	syncs int
}

func (r *recordedPose) SetPosition(p math.Vec3) { r.pos = p; r.syncs++ }

func (r *recordedPose) SetRotation(q math.Quaternion) { r.rot = q }

func TestStepIntegratesGravity(t *testing.T) {
	w := NewWorld(math.Vec3{Y: -10})
	body := NewSphereBody(0.5, 1)
	body.Position = math.Vec3{Y: 10}
	body.LinDamping = 0
	id := w.AddBody(body)

	w.Step(0.1)

	// Semi-implicit Euler: velocity first, then position with the new velocity.
	assert.InDelta(t, -1.0, float64(body.LinVel.Y), 1e-4)
	assert.InDelta(t, 9.9, float64(w.Position(id).Y), 1e-4)
}

func TestStaticBodiesNeverMove(t *testing.T) {
	w := NewWorld(math.Vec3{Y: -10})
	floor := NewStaticPlane(math.Vec3{Y: 1}, 0)
	floor.Mass = 5 // planes stay static regardless
	wall := NewBoxBody(math.Vec3{X: 1, Y: 1, Z: 1}, 0)
	wall.Position = math.Vec3{X: 3}
	w.AddBody(floor)
	wallID := w.AddBody(wall)

	require.True(t, floor.Static())
	require.True(t, wall.Static())
	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}
	assert.Equal(t, math.Vec3{X: 3}, w.Position(wallID))
}

func TestSphereRestsOnPlane(t *testing.T) {
	w := NewWorld(math.Vec3{Y: -10})
	w.AddBody(NewStaticPlane(math.Vec3{Y: 1}, 0))

	ball := NewSphereBody(1, 1)
	ball.Position = math.Vec3{Y: 4}
	ball.Restitution = 0
	id := w.AddBody(ball)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 120.0)
	}

	pos := w.Position(id)
	assert.InDelta(t, 1.0, float64(pos.Y), 0.05, "sphere settles at its radius")
	assert.InDelta(t, 0, float64(ball.LinVel.Y), 0.2)
}

func TestSphereBouncesWithRestitution(t *testing.T) {
	w := NewWorld(math.Vec3Zero)
	plane := NewStaticPlane(math.Vec3{Y: 1}, 0)
	plane.Restitution = 1
	w.AddBody(plane)

	ball := NewSphereBody(1, 1)
	ball.Position = math.Vec3{Y: 0.95}
	ball.LinVel = math.Vec3{Y: -2}
	ball.Restitution = 0.5
	ball.LinDamping = 0
	w.AddBody(ball)

	w.Step(0.001)

	// e = min of the pair, so the bounce returns half the approach speed.
	assert.InDelta(t, 1.0, float64(ball.LinVel.Y), 0.01)
}

func TestSphereSphereElasticExchange(t *testing.T) {
	w := NewWorld(math.Vec3Zero)

	a := NewSphereBody(0.5, 1)
	a.Position = math.Vec3{X: -0.4}
	a.LinVel = math.Vec3{X: 1}
	a.Restitution = 1
	a.LinDamping = 0

	b := NewSphereBody(0.5, 1)
	b.Position = math.Vec3{X: 0.4}
	b.LinVel = math.Vec3{X: -1}
	b.Restitution = 1
	b.LinDamping = 0

	idA := w.AddBody(a)
	idB := w.AddBody(b)

	w.Step(0.001)

	assert.InDelta(t, -1.0, float64(a.LinVel.X), 0.01, "equal masses swap velocities")
	assert.InDelta(t, 1.0, float64(b.LinVel.X), 0.01)

	contacts := w.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, idA, contacts[0].A)
	assert.Equal(t, idB, contacts[0].B)
	assert.InDelta(t, 1.0, float64(contacts[0].Normal.X), 1e-4)
	assert.InDelta(t, 0.2, float64(contacts[0].Depth), 0.01)
}

func TestContactsClearWhenSeparated(t *testing.T) {
	w := NewWorld(math.Vec3Zero)
	a := NewSphereBody(0.5, 1)
	a.Position = math.Vec3{X: -0.4}
	b := NewSphereBody(0.5, 1)
	b.Position = math.Vec3{X: 0.4}
	w.AddBody(a)
	w.AddBody(b)

	w.Step(0.001)
	require.NotEmpty(t, w.Contacts())

	a.Position = math.Vec3{X: -5}
	w.Step(0.001)
	assert.Empty(t, w.Contacts())
}

func TestApplyImpulseScalesByMass(t *testing.T) {
	w := NewWorld(math.Vec3Zero)
	heavy := NewSphereBody(1, 2)
	heavy.LinDamping = 0
	id := w.AddBody(heavy)

	w.ApplyImpulse(id, math.Vec3{X: 4})
	assert.InDelta(t, 2.0, float64(heavy.LinVel.X), 1e-4)

	// Impulses on static bodies are ignored.
	planeID := w.AddBody(NewStaticPlane(math.Vec3{Y: 1}, 0))
	w.ApplyImpulse(planeID, math.Vec3{X: 100})
	assert.Equal(t, math.Vec3Zero, w.Body(planeID).LinVel)
}

func TestSetVelocities(t *testing.T) {
	w := NewWorld(math.Vec3Zero)
	body := NewSphereBody(1, 1)
	body.LinDamping = 0
	body.AngDamping = 0
	id := w.AddBody(body)

	w.SetLinearVelocity(id, math.Vec3{Z: 3})
	w.SetAngularVelocity(id, math.Vec3{Y: 1})
	w.Step(0.5)

	assert.InDelta(t, 1.5, float64(body.Position.Z), 1e-3)
	// Rotation advanced by axis-angle (Y, 0.5).
	want := math.QuaternionFromAxisAngle(math.Vec3{Y: 1}, 0.5)
	assert.InDelta(t, float64(want.Y), float64(body.Rotation.Y), 1e-3)
	assert.InDelta(t, float64(want.W), float64(body.Rotation.W), 1e-3)
}

func TestRemoveBody(t *testing.T) {
	w := NewWorld(math.Vec3Zero)
	a := w.AddBody(NewSphereBody(1, 1))
	b := w.AddBody(NewSphereBody(1, 1))
	require.Equal(t, 2, w.Count())

	w.RemoveBody(a)
	assert.Equal(t, 1, w.Count())
	assert.Nil(t, w.Body(a))
	assert.Equal(t, math.Vec3Zero, w.Position(a))
	assert.NotNil(t, w.Body(b))

	w.RemoveBody(a) // double remove is a no-op
	assert.Equal(t, 1, w.Count())
}

func TestBindAndSyncScene(t *testing.T) {
	w := NewWorld(math.Vec3{Y: -10})
	ball := NewSphereBody(1, 1)
	ball.Position = math.Vec3{Y: 5}
	id := w.AddBody(ball)

	var pose recordedPose
	w.Bind(&pose, id)

	w.Step(1.0 / 60.0)
	w.SyncScene()

	require.Equal(t, 1, pose.syncs)
	assert.Equal(t, ball.Position, pose.pos)
	assert.Equal(t, ball.Rotation, pose.rot)

	// Removing the body drops the binding: no further writes.
	w.RemoveBody(id)
	w.Step(1.0 / 60.0)
	w.SyncScene()
	assert.Equal(t, 1, pose.syncs)
}

func TestStepIsDeterministic(t *testing.T) {
	run := func() math.Vec3 {
		w := NewWorld(math.Vec3{Y: -10})
		w.AddBody(NewStaticPlane(math.Vec3{Y: 1}, 0))
		for i := 0; i < 8; i++ {
			b := NewSphereBody(0.3, 1)
			b.Position = math.Vec3{X: float32(i) * 0.25, Y: 2 + float32(i)*0.5}
			id := w.AddBody(b)
			w.ApplyImpulse(id, math.Vec3{X: 0.5, Z: -0.25})
		}
		var last math.Vec3
		for i := 0; i < 240; i++ {
			w.Step(1.0 / 120.0)
		}
		for _, b := range w.Bodies() {
			last = last.Add(b.Position)
		}
		return last
	}

	assert.Equal(t, run(), run())
}

func TestStepIgnoresNonPositiveDt(t *testing.T) {
	w := NewWorld(math.Vec3{Y: -10})
	body := NewSphereBody(1, 1)
	body.Position = math.Vec3{Y: 3}
	w.AddBody(body)

	w.Step(0)
	w.Step(-0.1)
	assert.Equal(t, math.Vec3{Y: 3}, body.Position)
}
