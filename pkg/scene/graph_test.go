package scene

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/diorama/pkg/math3d"
)

const tol = 1e-9

func mustAdd(t *testing.T, g *Graph, name string, parent NodeID) NodeID {
	t.Helper()
	id, err := g.Add(name, parent)
	require.NoError(t, err)
	return id
}

func TestIdentityNodeWorldIsIdentity(t *testing.T) {
	g := NewGraph()
	id := mustAdd(t, g, "root", None)

	f := g.Refresh()
	assert.Equal(t, math3d.Identity(), f.World(id))
	assert.Equal(t, math3d.Identity(), f.WorldRotation(id))
}

func TestParentTranslationIsRigid(t *testing.T) {
	g := NewGraph()
	parent := mustAdd(t, g, "parent", None)
	child := mustAdd(t, g, "child", parent)

	*g.Local(child) = Transform{
		Scale:       math3d.V3(2, 1, 3),
		Rotation:    math3d.V3(0.3, 1.2, -0.7),
		Translation: math3d.V3(4, -2, 7),
	}

	before := g.Refresh().Position(child)

	tr := math3d.V3(10, -3, 5)
	g.Local(parent).Translation = tr
	after := g.Refresh().Position(child)

	assert.Equal(t, before.Add(tr), after)
}

func TestParentRotationCarriesChild(t *testing.T) {
	g := NewGraph()
	parent := mustAdd(t, g, "parent", None)
	child := mustAdd(t, g, "child", parent)

	g.Local(parent).Rotation = math3d.V3(0, math.Pi/2, 0)
	g.Local(parent).Translation = math3d.V3(0, 1, 0)
	g.Local(child).Translation = math3d.V3(0, 0, 5)

	f := g.Refresh()
	assert.True(t, f.Position(child).ApproxEqual(math3d.V3(5, 1, 0), tol), "got %v", f.Position(child))
}

func TestRotationOrderThroughHierarchy(t *testing.T) {
	rx, ry, rz := math.Pi/4, math.Pi/6, math.Pi/3

	g := NewGraph()
	single := mustAdd(t, g, "single", None)
	g.Local(single).Rotation = math3d.V3(rx, ry, rz)

	// Y applied last means Y sits at the top of the chain.
	yawNode := mustAdd(t, g, "yaw", None)
	pitchNode := mustAdd(t, g, "pitch", yawNode)
	rollNode := mustAdd(t, g, "roll", pitchNode)
	g.Local(yawNode).Rotation = math3d.V3(0, ry, 0)
	g.Local(pitchNode).Rotation = math3d.V3(rx, 0, 0)
	g.Local(rollNode).Rotation = math3d.V3(0, 0, rz)

	// Reversed chain: Z at the top, Y at the bottom.
	zTop := mustAdd(t, g, "z", None)
	xMid := mustAdd(t, g, "x", zTop)
	yLeaf := mustAdd(t, g, "y", xMid)
	g.Local(zTop).Rotation = math3d.V3(0, 0, rz)
	g.Local(xMid).Rotation = math3d.V3(rx, 0, 0)
	g.Local(yLeaf).Rotation = math3d.V3(0, ry, 0)

	f := g.Refresh()
	want := math3d.RotateZ(rz).Mul(math3d.RotateX(rx)).Mul(math3d.RotateY(ry))

	assert.True(t, f.World(single).ApproxEqual(want, tol))
	assert.True(t, f.World(rollNode).ApproxEqual(want, tol))
	assert.False(t, f.World(yLeaf).ApproxEqual(want, 1e-6), "rotations must not commute")
}

func TestWorldRotationExcludesScaleAndTranslation(t *testing.T) {
	g := NewGraph()
	parent := mustAdd(t, g, "parent", None)
	child := mustAdd(t, g, "child", parent)

	*g.Local(parent) = Transform{Scale: math3d.V3(3, 3, 3), Rotation: math3d.V3(0, 0.5, 0), Translation: math3d.V3(1, 2, 3)}
	*g.Local(child) = Transform{Scale: math3d.V3(2, 2, 2), Rotation: math3d.V3(0.25, 0, 0), Translation: math3d.V3(9, 9, 9)}

	f := g.Refresh()
	want := math3d.RotateX(0.25).Mul(math3d.RotateY(0.5))
	assert.True(t, f.WorldRotation(child).ApproxEqual(want, tol))
}

func TestRelativeDirection(t *testing.T) {
	g := NewGraph()
	id := mustAdd(t, g, "player", None)
	*g.Local(id) = Transform{Scale: math3d.V3(4, 4, 4), Rotation: math3d.V3(0, math.Pi/2, 0), Translation: math3d.V3(7, 0, 0)}

	f := g.Refresh()
	fwd := f.RelativeDirection(id, math3d.Forward())
	assert.True(t, fwd.ApproxEqual(math3d.V3(1, 0, 0), tol), "forward = %v", fwd)

	right := g.RelativeDirection(id, math3d.Right())
	assert.True(t, right.ApproxEqual(math3d.V3(0, 0, -1), tol), "right = %v", right)
}

func TestRefreshOrderParentsFirst(t *testing.T) {
	g := NewGraph()
	child := mustAdd(t, g, "child", None)
	parent := mustAdd(t, g, "parent", None)
	require.NoError(t, g.SetParent(child, parent))

	assert.Equal(t, []NodeID{parent, child}, g.Order())

	g.Local(parent).Translation = math3d.V3(1, 2, 3)
	f := g.Refresh()
	assert.Equal(t, math3d.V3(1, 2, 3), f.Position(child))
	assert.Equal(t, []NodeID{parent, child}, f.Order())
}

func TestOrderIsDepthFirst(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "root", None)
	a := mustAdd(t, g, "a", root)
	b := mustAdd(t, g, "b", root)
	a1 := mustAdd(t, g, "a1", a)
	other := mustAdd(t, g, "other", None)
	b1 := mustAdd(t, g, "b1", b)

	assert.Equal(t, []NodeID{root, a, a1, b, b1, other}, g.Order())
}

func TestSetParentRejectsCycles(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "root", None)
	mid := mustAdd(t, g, "mid", root)
	leaf := mustAdd(t, g, "leaf", mid)

	tests := []struct {
		name       string
		id, parent NodeID
	}{
		{"self", root, root},
		{"grandchild", root, leaf},
		{"child", mid, leaf},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := g.SetParent(tc.id, tc.parent)
			assert.True(t, errors.Is(err, ErrCycle), "err = %v", err)
		})
	}

	assert.Equal(t, None, g.Parent(root))
	assert.Equal(t, []NodeID{root, mid, leaf}, g.Order())
}

func TestSetParentMovesChild(t *testing.T) {
	g := NewGraph()
	a := mustAdd(t, g, "a", None)
	b := mustAdd(t, g, "b", None)
	c := mustAdd(t, g, "c", a)

	g.Local(a).Translation = math3d.V3(-5, 0, 0)
	g.Local(b).Translation = math3d.V3(5, 0, 0)

	require.NoError(t, g.SetParent(c, b))
	assert.Equal(t, b, g.Parent(c))
	assert.True(t, g.Refresh().Position(c).ApproxEqual(math3d.V3(5, 0, 0), tol))

	require.NoError(t, g.SetParent(c, None))
	assert.Equal(t, None, g.Parent(c))
	assert.True(t, g.Refresh().Position(c).ApproxEqual(math3d.Zero3(), tol))
}

func TestUnknownNodes(t *testing.T) {
	g := NewGraph()
	root := mustAdd(t, g, "root", None)

	_, err := g.Add("orphan", 42)
	assert.True(t, errors.Is(err, ErrUnknownNode))

	assert.True(t, errors.Is(g.SetParent(root, 7), ErrUnknownNode))
	assert.True(t, errors.Is(g.SetParent(9, root), ErrUnknownNode))
	assert.True(t, errors.Is(g.RefreshNode(3), ErrUnknownNode))

	_, err = g.Node(-2)
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestDuplicateNames(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, "head", None)
	_, err := g.Add("head", None)
	assert.Error(t, err)

	id, ok := g.Lookup("head")
	assert.True(t, ok)
	assert.Equal(t, NodeID(0), id)
}

func TestRefreshNodeReadsParentAsIs(t *testing.T) {
	g := NewGraph()
	parent := mustAdd(t, g, "parent", None)
	child := mustAdd(t, g, "child", parent)
	g.Refresh()

	// Moving the parent without refreshing it leaves the child on the old
	// parent matrix.
	g.Local(parent).Translation = math3d.V3(5, 0, 0)
	require.NoError(t, g.RefreshNode(child))
	n, err := g.Node(child)
	require.NoError(t, err)
	assert.Equal(t, math3d.Zero3(), n.World().Translation())

	require.NoError(t, g.RefreshNode(parent))
	require.NoError(t, g.RefreshNode(child))
	n, _ = g.Node(child)
	assert.Equal(t, math3d.V3(5, 0, 0), n.World().Translation())
}

func TestFrameIsSnapshot(t *testing.T) {
	g := NewGraph()
	id := mustAdd(t, g, "n", None)
	f := g.Refresh()

	g.Local(id).Translation = math3d.V3(1, 1, 1)
	g.Refresh()

	assert.Equal(t, math3d.Zero3(), f.Position(id))
	assert.Equal(t, 1, f.Len())
}
