package physics

import (
	"scenelab/math"
)

// Shape selects the collision geometry of a body.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
	ShapePlane // infinite static plane
)

// BodyID identifies a body inside a World. IDs are never reused.
type BodyID uint32

// Body is a rigid body. Create one with NewSphereBody / NewBoxBody /
// NewStaticPlane, adjust fields, then hand it to World.AddBody.
type Body struct {
	ID    BodyID // assigned by World.AddBody
	Shape Shape

	// Shape parameters (by Shape)
	Radius      float32   // ShapeSphere
	HalfExtents math.Vec3 // ShapeBox
	Normal      math.Vec3 // ShapePlane: unit plane normal
	Offset      float32   // ShapePlane: plane equation p·Normal = Offset

	// Mass properties. Mass 0 means static: the body never moves and
	// collision impulses treat it as immovable.
	Mass    float32
	invMass float32 // cached by World.AddBody

	Restitution float32 // bounciness 0..1
	Friction    float32 // Coulomb friction coefficient
	LinDamping  float32 // per-second linear velocity decay
	AngDamping  float32 // per-second angular velocity decay

	Position math.Vec3
	Rotation math.Quaternion
	LinVel   math.Vec3
	AngVel   math.Vec3 // world-space axis scaled by rad/s

	// Tag is free for callers (entity kind, ball number, ...).
	Tag string
}

// NewSphereBody returns a dynamic sphere. mass 0 makes it static.
func NewSphereBody(radius, mass float32) *Body {
	return &Body{
		Shape:       ShapeSphere,
		Radius:      radius,
		Mass:        mass,
		Restitution: 0.4,
		Friction:    0.4,
		LinDamping:  0.05,
		AngDamping:  0.05,
		Rotation:    math.QuaternionIdentity(),
	}
}

// NewBoxBody returns a dynamic box with the given half extents.
// mass 0 makes it static.
func NewBoxBody(halfExtents math.Vec3, mass float32) *Body {
	return &Body{
		Shape:       ShapeBox,
		HalfExtents: halfExtents,
		Mass:        mass,
		Restitution: 0.2,
		Friction:    0.5,
		LinDamping:  0.05,
		AngDamping:  0.05,
		Rotation:    math.QuaternionIdentity(),
	}
}

// NewStaticPlane returns the infinite plane p·normal = offset.
// Planes are always static regardless of mass.
func NewStaticPlane(normal math.Vec3, offset float32) *Body {
	return &Body{
		Shape:       ShapePlane,
		Normal:      normal.Normalize(),
		Offset:      offset,
		Restitution: 0.3,
		Friction:    0.6,
		Rotation:    math.QuaternionIdentity(),
	}
}

// Static reports whether the body is immovable.
func (b *Body) Static() bool {
	return b.Mass == 0 || b.Shape == ShapePlane
}

// InvMass returns 1/Mass, or 0 for static bodies.
func (b *Body) InvMass() float32 { return b.invMass }

func (b *Body) computeInvMass() {
	if b.Static() {
		b.invMass = 0
		return
	}
	b.invMass = 1 / b.Mass
}
