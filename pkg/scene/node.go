package scene

import "github.com/taigrr/diorama/pkg/math3d"

// NodeID addresses a node inside its Graph.
type NodeID int

// None is the parent of a root node.
const None NodeID = -1

// Node is one entry of the graph arena. The parent link is an index, never
// an owning reference.
type Node struct {
	Name  string
	Local Transform

	parent   NodeID
	world    math3d.Mat4
	worldRot math3d.Mat4
}

func newNode(name string, parent NodeID) Node {
	return Node{
		Name:     name,
		Local:    IdentityTransform(),
		parent:   parent,
		world:    math3d.Identity(),
		worldRot: math3d.Identity(),
	}
}

// refresh recomputes the derived matrices from the local transform and, if
// given, the parent's current matrices. The child is composed first and then
// placed into parent space.
func (n *Node) refresh(parent *Node) {
	n.world = n.Local.Matrix()
	n.worldRot = n.Local.RotationMatrix()
	if parent != nil {
		n.world = n.world.Mul(parent.world)
		n.worldRot = n.worldRot.Mul(parent.worldRot)
	}
}

// Parent returns the parent id, or None.
func (n *Node) Parent() NodeID {
	return n.parent
}

// World returns the world matrix as of the last refresh.
func (n *Node) World() math3d.Mat4 {
	return n.world
}

// WorldRotation returns the rotation-only world matrix as of the last refresh.
func (n *Node) WorldRotation() math3d.Mat4 {
	return n.worldRot
}
