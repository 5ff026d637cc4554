package physics

import (
	"github.com/chewxy/math32"

	"scenelab/math"
)

// Positional-correction tuning (Baumgarte style).
const (
	correctionPercent = 0.2
	penetrationSlop   = 0.01
	maxAngularStep    = math.Pi / 4 // per-step rotation clamp
)

// Poser is the part of a scene node the world writes poses back to.
// scene.Node satisfies it.
type Poser interface {
	SetPosition(math.Vec3)
	SetRotation(math.Quaternion)
}

// World simulates rigid bodies with semi-implicit Euler integration and
// impulse-based contact resolution. Bodies are iterated in insertion order, so
// a fixed timestep gives identical results run to run.
//
// Supported contact pairs: sphere-sphere, sphere-box, sphere-plane, box-plane.
type World struct {
	Gravity math.Vec3

	bodies   []*Body
	index    map[BodyID]*Body
	bindings map[BodyID]Poser
	contacts []Contact
	nextID   BodyID
}

// NewWorld creates an empty world with the given gravity.
func NewWorld(gravity math.Vec3) *World {
	return &World{
		Gravity:  gravity,
		index:    map[BodyID]*Body{},
		bindings: map[BodyID]Poser{},
	}
}

// AddBody adds the body and returns its assigned ID.
func (w *World) AddBody(b *Body) BodyID {
	w.nextID++
	b.ID = w.nextID
	if (b.Rotation == math.Quaternion{}) {
		b.Rotation = math.QuaternionIdentity()
	}
	b.computeInvMass()
	w.bodies = append(w.bodies, b)
	w.index[b.ID] = b
	return b.ID
}

// RemoveBody removes the body and drops its scene binding.
// Unknown IDs are ignored.
func (w *World) RemoveBody(id BodyID) {
	if _, ok := w.index[id]; !ok {
		return
	}
	delete(w.index, id)
	delete(w.bindings, id)
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
}

// Body returns the body with the given ID, or nil.
func (w *World) Body(id BodyID) *Body { return w.index[id] }

// Bodies returns the live body list in insertion order.
// The slice is owned by the world; do not append to or reorder it.
func (w *World) Bodies() []*Body { return w.bodies }

// Count returns the number of bodies.
func (w *World) Count() int { return len(w.bodies) }

// Position returns the body position, or the zero vector for unknown IDs.
func (w *World) Position(id BodyID) math.Vec3 {
	if b, ok := w.index[id]; ok {
		return b.Position
	}
	return math.Vec3Zero
}

// SetLinearVelocity replaces the body's linear velocity.
func (w *World) SetLinearVelocity(id BodyID, v math.Vec3) {
	if b, ok := w.index[id]; ok {
		b.LinVel = v
	}
}

// SetAngularVelocity replaces the body's angular velocity.
func (w *World) SetAngularVelocity(id BodyID, v math.Vec3) {
	if b, ok := w.index[id]; ok {
		b.AngVel = v
	}
}

// ApplyImpulse applies an instantaneous momentum change at the center of mass.
func (w *World) ApplyImpulse(id BodyID, impulse math.Vec3) {
	if b, ok := w.index[id]; ok && !b.Static() {
		b.LinVel = b.LinVel.Add(impulse.Mul(b.invMass))
	}
}

// Contacts returns the pairs that touched during the last Step. The slice is
// reused between steps; copy it to keep it.
func (w *World) Contacts() []Contact { return w.contacts }

// Bind attaches a scene node (or any Poser) to a body. SyncScene then copies
// the body pose onto the target after each step. Rebinding replaces the old
// target; removing the body drops the binding.
func (w *World) Bind(target Poser, id BodyID) {
	if _, ok := w.index[id]; !ok {
		return
	}
	w.bindings[id] = target
}

// Unbind detaches the node bound to the body, if any.
func (w *World) Unbind(id BodyID) { delete(w.bindings, id) }

// SyncScene copies body poses to all bound nodes. Call after Step, before
// rendering. Bound transforms are overwritten wholesale.
func (w *World) SyncScene() {
	for _, b := range w.bodies {
		if target, ok := w.bindings[b.ID]; ok {
			target.SetPosition(b.Position)
			target.SetRotation(b.Rotation)
		}
	}
}

// Step advances the simulation by dt seconds: integrate velocities, resolve
// contacts, integrate positions. Contacts found here are readable via
// Contacts() until the next Step.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}

	// Velocities: gravity, then damping.
	for _, b := range w.bodies {
		if b.Static() {
			continue
		}
		b.LinVel = b.LinVel.Add(w.Gravity.Mul(dt))
		b.LinVel = b.LinVel.Mul(1 / (1 + b.LinDamping*dt))
		b.AngVel = b.AngVel.Mul(1 / (1 + b.AngDamping*dt))
	}

	// Narrow phase + impulse resolution over all pairs, insertion order.
	w.contacts = w.contacts[:0]
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			a, b := w.bodies[i], w.bodies[j]
			if a.Static() && b.Static() {
				continue
			}
			c, ok := contactPair(a, b)
			if !ok {
				continue
			}
			w.contacts = append(w.contacts, c)
			w.resolve(a, b, c)
		}
	}

	// Positions.
	for _, b := range w.bodies {
		if b.Static() {
			continue
		}
		b.Position = b.Position.Add(b.LinVel.Mul(dt))
		integrateRotation(b, dt)
	}
}

// resolve applies a restitution impulse, Coulomb friction, and positional
// correction for one contact. Impulses act on the centers of mass.
func (w *World) resolve(a, b *Body, c Contact) {
	invSum := a.invMass + b.invMass
	if invSum == 0 {
		return
	}

	relVel := b.LinVel.Sub(a.LinVel)
	velN := relVel.Dot(c.Normal)
	if velN > 0 {
		// Already separating; still correct penetration below.
	} else {
		e := math32.Min(a.Restitution, b.Restitution)
		j := -(1 + e) * velN / invSum
		impulse := c.Normal.Mul(j)
		a.LinVel = a.LinVel.Sub(impulse.Mul(a.invMass))
		b.LinVel = b.LinVel.Add(impulse.Mul(b.invMass))

		// Friction along the contact tangent, clamped by the normal impulse.
		relVel = b.LinVel.Sub(a.LinVel)
		tangent := relVel.Sub(c.Normal.Mul(relVel.Dot(c.Normal)))
		if tangent.LengthSqr() > 1e-8 {
			tangent = tangent.Normalize()
			jt := -relVel.Dot(tangent) / invSum
			mu := math32.Sqrt(a.Friction * b.Friction)
			jt = math.Clamp(jt, -mu*j, mu*j)
			fImpulse := tangent.Mul(jt)
			a.LinVel = a.LinVel.Sub(fImpulse.Mul(a.invMass))
			b.LinVel = b.LinVel.Add(fImpulse.Mul(b.invMass))
		}
	}

	pen := c.Depth - penetrationSlop
	if pen > 0 {
		correction := c.Normal.Mul(correctionPercent * pen / invSum)
		a.Position = a.Position.Sub(correction.Mul(a.invMass))
		b.Position = b.Position.Add(correction.Mul(b.invMass))
	}
}

// integrateRotation steps orientation from angular velocity, clamping the
// per-step rotation so huge dt spikes cannot flip bodies.
func integrateRotation(b *Body, dt float32) {
	speed := b.AngVel.Length()
	if speed < 1e-6 {
		return
	}
	angle := speed * dt
	if angle > maxAngularStep {
		angle = maxAngularStep
	}
	axis := b.AngVel.Div(speed)
	dq := math.QuaternionFromAxisAngle(axis, angle)
	b.Rotation = dq.Mul(b.Rotation).Normalize()
}
