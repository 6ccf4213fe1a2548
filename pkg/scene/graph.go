package scene

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/math3d"
)

var (
	// ErrUnknownNode reports a NodeID that does not belong to the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrCycle reports a parent link that would make a node its own ancestor.
	ErrCycle = errors.New("parent cycle")
)

// Graph is an arena of transform nodes. Nodes are never removed; a scene is
// built once and dropped as a whole.
type Graph struct {
	nodes    []Node
	children [][]NodeID
	names    map[string]NodeID

	order      []NodeID
	orderDirty bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		names:      make(map[string]NodeID),
		orderDirty: true,
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Add appends a node with an identity transform under parent (None for a
// root) and returns its id. Names are optional; a non-empty name must be
// unique and can be looked up later.
func (g *Graph) Add(name string, parent NodeID) (NodeID, error) {
	if parent != None && !g.valid(parent) {
		return None, errors.Wrapf(ErrUnknownNode, "parent %d of %q", parent, name)
	}
	if name != "" {
		if _, dup := g.names[name]; dup {
			return None, errors.Errorf("duplicate node name %q", name)
		}
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, newNode(name, parent))
	g.children = append(g.children, nil)
	if parent != None {
		g.children[parent] = append(g.children[parent], id)
	}
	if name != "" {
		g.names[name] = id
	}
	g.orderDirty = true
	return id, nil
}

// Lookup returns the id of the node with the given name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Node returns the node for id. The pointer is only valid until the next Add.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if !g.valid(id) {
		return nil, errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	return &g.nodes[id], nil
}

// Local returns the mutable local transform of id. It panics on an unknown
// id, like indexing a slice out of range.
func (g *Graph) Local(id NodeID) *Transform {
	return &g.nodes[id].Local
}

// Parent returns the parent of id, or None.
func (g *Graph) Parent(id NodeID) NodeID {
	if !g.valid(id) {
		return None
	}
	return g.nodes[id].parent
}

// SetParent re-links id under parent (None detaches it). Links that would
// make id its own ancestor fail with ErrCycle and leave the graph unchanged.
func (g *Graph) SetParent(id, parent NodeID) error {
	if !g.valid(id) {
		return errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	if parent != None {
		if !g.valid(parent) {
			return errors.Wrapf(ErrUnknownNode, "parent %d", parent)
		}
		for a := parent; a != None; a = g.nodes[a].parent {
			if a == id {
				return errors.Wrapf(ErrCycle, "node %d under %d", id, parent)
			}
		}
	}

	old := g.nodes[id].parent
	if old == parent {
		return nil
	}
	if old != None {
		g.children[old] = slices.DeleteFunc(g.children[old], func(c NodeID) bool { return c == id })
	}
	if parent != None {
		g.children[parent] = append(g.children[parent], id)
	}
	g.nodes[id].parent = parent
	g.orderDirty = true
	return nil
}

// Order returns the refresh order: depth first from each root, roots and
// siblings in insertion order. Every parent precedes its children.
func (g *Graph) Order() []NodeID {
	g.updateOrder()
	return slices.Clone(g.order)
}

func (g *Graph) updateOrder() {
	if !g.orderDirty {
		return
	}
	g.order = g.order[:0]
	var visit func(id NodeID)
	visit = func(id NodeID) {
		g.order = append(g.order, id)
		for _, c := range g.children[id] {
			visit(c)
		}
	}
	for i := range g.nodes {
		if g.nodes[i].parent == None {
			visit(NodeID(i))
		}
	}
	g.orderDirty = false
}

// RefreshNode recomputes the world matrices of a single node from its local
// transform and its parent's current matrices. A parent that has not been
// refreshed this frame yields a stale result; Refresh avoids that by
// walking the whole graph in order.
func (g *Graph) RefreshNode(id NodeID) error {
	if !g.valid(id) {
		return errors.Wrapf(ErrUnknownNode, "node %d", id)
	}
	var parent *Node
	if p := g.nodes[id].parent; p != None {
		parent = &g.nodes[p]
	}
	g.nodes[id].refresh(parent)
	return nil
}

// Refresh recomputes every node parents first and returns a read-only
// snapshot of the result for the draw pass.
func (g *Graph) Refresh() Frame {
	g.updateOrder()
	for _, id := range g.order {
		var parent *Node
		if p := g.nodes[id].parent; p != None {
			parent = &g.nodes[p]
		}
		g.nodes[id].refresh(parent)
	}
	return g.snapshot()
}

func (g *Graph) snapshot() Frame {
	f := Frame{
		world:    make([]math3d.Mat4, len(g.nodes)),
		worldRot: make([]math3d.Mat4, len(g.nodes)),
		order:    slices.Clone(g.order),
	}
	for i := range g.nodes {
		f.world[i] = g.nodes[i].world
		f.worldRot[i] = g.nodes[i].worldRot
	}
	return f
}

// RelativeDirection transforms a node-local direction by the node's current
// world rotation, ignoring scale and translation.
func (g *Graph) RelativeDirection(id NodeID, local math3d.Vec3) math3d.Vec3 {
	return g.nodes[id].worldRot.MulVec3Dir(local)
}
