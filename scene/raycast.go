package scene

import (
	"github.com/chewxy/math32"

	"scenelab/math"
)

// Ray is a world-space picking ray.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// HitResult reports the closest intersection found by RaycastScene.
// When Hit is false the other fields are zero.
type HitResult struct {
	Hit      bool
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Node     *Node
	FaceIdx  int // triangle index in the hit mesh
}

// ScreenToRay converts a mouse position in window pixels to a world-space
// ray through that pixel. mouseY grows downward, matching cursor callbacks.
func ScreenToRay(mouseX, mouseY, screenW, screenH float32, camera *Camera) Ray {
	ndcX := (2.0*mouseX)/screenW - 1.0
	ndcY := 1.0 - (2.0*mouseY)/screenH

	// Unproject a near-plane point back to world space.
	clip := math.Vec4{X: ndcX, Y: ndcY, Z: 0, W: 1}
	view := camera.GetProjectionMatrix().Inverse().MulVec(clip).ToVec3DivW()
	world := camera.GetViewMatrix().Inverse().TransformPoint(view)

	return Ray{
		Origin:    camera.Position,
		Direction: world.Sub(camera.Position).Normalize(),
	}
}

// RaycastScene tests the ray against every visible mesh node and returns
// the closest hit. AABBs cull whole nodes before any triangle test runs.
func RaycastScene(ray Ray, s *Scene) HitResult {
	closest := HitResult{Distance: math32.MaxFloat32}

	for _, node := range s.GetVisibleNodes() {
		if node.Mesh == nil {
			continue
		}

		box := ComputeAABB(node.Mesh, node.GetWorldMatrix())
		t, hit := rayAABB(ray, box)
		if !hit || t > closest.Distance {
			continue
		}

		if result := rayMesh(ray, node); result.Hit && result.Distance < closest.Distance {
			closest = result
		}
	}

	if !closest.Hit {
		return HitResult{}
	}
	return closest
}

// rayAABB is the slab test. Returns the entry distance, which is negative
// when the origin is inside the box.
func rayAABB(ray Ray, box AABB) (float32, bool) {
	invX := 1.0 / ray.Direction.X
	invY := 1.0 / ray.Direction.Y
	invZ := 1.0 / ray.Direction.Z

	t1 := (box.Min.X - ray.Origin.X) * invX
	t2 := (box.Max.X - ray.Origin.X) * invX
	t3 := (box.Min.Y - ray.Origin.Y) * invY
	t4 := (box.Max.Y - ray.Origin.Y) * invY
	t5 := (box.Min.Z - ray.Origin.Z) * invZ
	t6 := (box.Max.Z - ray.Origin.Z) * invZ

	tmin := math32.Max(math32.Max(math32.Min(t1, t2), math32.Min(t3, t4)), math32.Min(t5, t6))
	tmax := math32.Min(math32.Min(math32.Max(t1, t2), math32.Max(t3, t4)), math32.Max(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

// rayMesh walks the node's triangles in world space and keeps the nearest
// Möller-Trumbore hit.
func rayMesh(ray Ray, node *Node) HitResult {
	mesh := node.Mesh
	world := node.GetWorldMatrix()
	closest := HitResult{Distance: math32.MaxFloat32}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		v0 := world.MulVec3(mesh.Vertices[mesh.Indices[i]].Position)
		v1 := world.MulVec3(mesh.Vertices[mesh.Indices[i+1]].Position)
		v2 := world.MulVec3(mesh.Vertices[mesh.Indices[i+2]].Position)

		t, hit := rayTriangle(ray, v0, v1, v2)
		if hit && t < closest.Distance {
			closest.Hit = true
			closest.Distance = t
			closest.Point = ray.Origin.Add(ray.Direction.Mul(t))
			closest.Normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
			closest.Node = node
			closest.FaceIdx = i / 3
		}
	}

	return closest
}

// rayTriangle is Möller-Trumbore. Backfaces count as hits so picking works
// from inside open meshes.
func rayTriangle(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false // ray parallel to the triangle plane
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
