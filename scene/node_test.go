package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenelab/math"
)

func requireVec3Near(t *testing.T, want, got math.Vec3) {
	t.Helper()
	const tol = 0.001
	if math32.Abs(want.X-got.X) > tol || math32.Abs(want.Y-got.Y) > tol || math32.Abs(want.Z-got.Z) > tol {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNodeWorldMatrixHierarchy(t *testing.T) {
	parent := NewNode("parent")
	parent.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Up, math.Pi/2))

	child := NewNode("child")
	child.SetPosition(math.Vec3{Z: -1})
	parent.AddChild(child)

	// The parent's rotation carries the child's offset with it
	got := child.GetWorldMatrix().TransformPoint(math.Vec3Zero)
	requireVec3Near(t, math.Vec3{X: -1}, got)
}

func TestNodeWorldMatrixFollowsParentMove(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	child.SetPosition(math.Vec3{X: 1})
	parent.AddChild(child)

	// Prime the cache, then move the parent
	_ = child.GetWorldMatrix()
	parent.Translate(math.Vec3{Y: 5})

	got := child.GetWorldMatrix().TransformPoint(math.Vec3Zero)
	requireVec3Near(t, math.Vec3{X: 1, Y: 5}, got)
}

func TestNodeRotateSpinsInPlace(t *testing.T) {
	n := NewNode("n")
	n.SetPosition(math.Vec3{X: 10})
	n.Rotate(math.Vec3Up, math.Pi/2)

	// Rotation must not move the node's own origin
	got := n.GetWorldMatrix().TransformPoint(math.Vec3Zero)
	requireVec3Near(t, math.Vec3{X: 10}, got)
}

func TestNodeReparent(t *testing.T) {
	a := NewNode("a")
	a.SetPosition(math.Vec3{X: 1})
	b := NewNode("b")
	b.SetPosition(math.Vec3{X: 2})
	n := NewNode("n")

	a.AddChild(n)
	requireVec3Near(t, math.Vec3{X: 1}, n.GetWorldMatrix().TransformPoint(math.Vec3Zero))

	b.AddChild(n)
	require.Empty(t, a.Children)
	require.Same(t, b, n.Parent)
	requireVec3Near(t, math.Vec3{X: 2}, n.GetWorldMatrix().TransformPoint(math.Vec3Zero))
}

func TestNodeDetach(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.Vec3{X: 3})
	n := NewNode("n")
	parent.AddChild(n)
	_ = n.GetWorldMatrix()

	n.Detach()
	require.Nil(t, n.Parent)
	require.Empty(t, parent.Children)
	requireVec3Near(t, math.Vec3Zero, n.GetWorldMatrix().TransformPoint(math.Vec3Zero))

	// Detaching an orphan is a no-op
	n.Detach()
}

func TestNodeFindAndTraverse(t *testing.T) {
	root := NewNode("root")
	arm := NewNode("arm")
	hand := NewNode("hand")
	root.AddChild(arm)
	arm.AddChild(hand)

	require.Same(t, hand, root.Find("hand"))
	require.Nil(t, root.Find("missing"))

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"root", "arm", "hand"}, names)
}

func TestNodeIDsUnique(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	assert.NotEqual(t, a.ID, b.ID)
}
