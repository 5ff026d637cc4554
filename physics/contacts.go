package physics

import (
	"github.com/chewxy/math32"

	"scenelab/math"
)

// Contact is one touching pair from the last Step.
// Normal is the unit contact normal pointing from body A toward body B.
type Contact struct {
	A, B   BodyID
	Point  math.Vec3
	Normal math.Vec3
	Depth  float32
}

// contactPair dispatches on the shape pair and returns the contact with
// A = a.ID, B = b.ID. Box-box pairs are not resolved.
func contactPair(a, b *Body) (Contact, bool) {
	switch {
	case a.Shape == ShapeSphere && b.Shape == ShapeSphere:
		return contactSphereSphere(a, b)
	case a.Shape == ShapeSphere && b.Shape == ShapeBox:
		return contactSphereBox(a, b)
	case a.Shape == ShapeBox && b.Shape == ShapeSphere:
		c, ok := contactSphereBox(b, a)
		return c.flipped(), ok
	case a.Shape == ShapeSphere && b.Shape == ShapePlane:
		return contactSpherePlane(a, b)
	case a.Shape == ShapePlane && b.Shape == ShapeSphere:
		c, ok := contactSpherePlane(b, a)
		return c.flipped(), ok
	case a.Shape == ShapeBox && b.Shape == ShapePlane:
		return contactBoxPlane(a, b)
	case a.Shape == ShapePlane && b.Shape == ShapeBox:
		c, ok := contactBoxPlane(b, a)
		return c.flipped(), ok
	}
	return Contact{}, false
}

func (c Contact) flipped() Contact {
	c.A, c.B = c.B, c.A
	c.Normal = c.Normal.Negate()
	return c
}

func contactSphereSphere(a, b *Body) (Contact, bool) {
	delta := b.Position.Sub(a.Position)
	sum := a.Radius + b.Radius
	distSqr := delta.LengthSqr()
	if distSqr > sum*sum {
		return Contact{}, false
	}

	dist := math32.Sqrt(distSqr)
	normal := math.Vec3{Y: 1} // coincident centers: pick an arbitrary axis
	if dist > 1e-6 {
		normal = delta.Div(dist)
	}
	return Contact{
		A:      a.ID,
		B:      b.ID,
		Point:  a.Position.Add(normal.Mul(a.Radius)),
		Normal: normal,
		Depth:  sum - dist,
	}, true
}

// contactSphereBox finds the closest point on the (possibly rotated) box to
// the sphere center, in the box's local frame.
func contactSphereBox(s, box *Body) (Contact, bool) {
	toLocal := box.Rotation.Conjugate()
	local := toLocal.RotateVector(s.Position.Sub(box.Position))

	closest := math.Vec3{
		X: math.Clamp(local.X, -box.HalfExtents.X, box.HalfExtents.X),
		Y: math.Clamp(local.Y, -box.HalfExtents.Y, box.HalfExtents.Y),
		Z: math.Clamp(local.Z, -box.HalfExtents.Z, box.HalfExtents.Z),
	}
	delta := local.Sub(closest)
	distSqr := delta.LengthSqr()
	if distSqr > s.Radius*s.Radius {
		return Contact{}, false
	}

	var normalLocal math.Vec3
	var depth float32
	if distSqr > 1e-12 {
		dist := math32.Sqrt(distSqr)
		normalLocal = delta.Div(dist).Negate() // sphere → box
		depth = s.Radius - dist
	} else {
		// Center inside the box: push out along the face with the least
		// penetration.
		penX := box.HalfExtents.X - math32.Abs(local.X)
		penY := box.HalfExtents.Y - math32.Abs(local.Y)
		penZ := box.HalfExtents.Z - math32.Abs(local.Z)
		switch {
		case penX <= penY && penX <= penZ:
			normalLocal = math.Vec3{X: -sign(local.X)}
			depth = penX + s.Radius
		case penY <= penZ:
			normalLocal = math.Vec3{Y: -sign(local.Y)}
			depth = penY + s.Radius
		default:
			normalLocal = math.Vec3{Z: -sign(local.Z)}
			depth = penZ + s.Radius
		}
	}

	return Contact{
		A:      s.ID,
		B:      box.ID,
		Point:  box.Rotation.RotateVector(closest).Add(box.Position),
		Normal: box.Rotation.RotateVector(normalLocal),
		Depth:  depth,
	}, true
}

func contactSpherePlane(s, plane *Body) (Contact, bool) {
	dist := s.Position.Dot(plane.Normal) - plane.Offset
	if dist > s.Radius {
		return Contact{}, false
	}
	return Contact{
		A:      s.ID,
		B:      plane.ID,
		Point:  s.Position.Sub(plane.Normal.Mul(dist)),
		Normal: plane.Normal.Negate(), // sphere → plane
		Depth:  s.Radius - dist,
	}, true
}

// contactBoxPlane tests the eight box corners against the plane and reports
// the mean penetrating corner with the deepest penetration.
func contactBoxPlane(box, plane *Body) (Contact, bool) {
	h := box.HalfExtents
	corners := [8]math.Vec3{
		{X: -h.X, Y: -h.Y, Z: -h.Z},
		{X: h.X, Y: -h.Y, Z: -h.Z},
		{X: -h.X, Y: h.Y, Z: -h.Z},
		{X: h.X, Y: h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: h.Z},
		{X: h.X, Y: -h.Y, Z: h.Z},
		{X: -h.X, Y: h.Y, Z: h.Z},
		{X: h.X, Y: h.Y, Z: h.Z},
	}

	var sum math.Vec3
	var count int
	var depth float32
	for _, c := range corners {
		world := box.Rotation.RotateVector(c).Add(box.Position)
		d := world.Dot(plane.Normal) - plane.Offset
		if d < 0 {
			sum = sum.Add(world)
			count++
			if -d > depth {
				depth = -d
			}
		}
	}
	if count == 0 {
		return Contact{}, false
	}

	return Contact{
		A:      box.ID,
		B:      plane.ID,
		Point:  sum.Div(float32(count)),
		Normal: plane.Normal.Negate(), // box → plane
		Depth:  depth,
	}, true
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
