package scene

import (
	"slices"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Frame is an immutable snapshot of a graph's world matrices, taken right
// after a full refresh. Mutating the graph afterwards does not affect it.
type Frame struct {
	world    []math3d.Mat4
	worldRot []math3d.Mat4
	order    []NodeID
}

// Len returns the number of nodes in the snapshot.
func (f Frame) Len() int {
	return len(f.world)
}

// World returns the world matrix of id.
func (f Frame) World(id NodeID) math3d.Mat4 {
	return f.world[id]
}

// WorldRotation returns the rotation-only world matrix of id.
func (f Frame) WorldRotation(id NodeID) math3d.Mat4 {
	return f.worldRot[id]
}

// Position returns the world-space origin of id.
func (f Frame) Position(id NodeID) math3d.Vec3 {
	return f.world[id].Translation()
}

// RelativeDirection maps a node-local direction (such as +Z for forward)
// into world space using only the node's world rotation.
func (f Frame) RelativeDirection(id NodeID, local math3d.Vec3) math3d.Vec3 {
	return f.worldRot[id].MulVec3Dir(local)
}

// Order returns the refresh order used to build the snapshot.
func (f Frame) Order() []NodeID {
	return slices.Clone(f.order)
}
