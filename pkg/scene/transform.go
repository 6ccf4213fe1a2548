// Package scene holds the transform hierarchy: nodes with local scale,
// rotation and translation, linked to at most one parent, refreshed into
// world matrices parents first.
package scene

import "github.com/taigrr/diorama/pkg/math3d"

// Transform is a node's local placement relative to its parent.
type Transform struct {
	Scale       math3d.Vec3
	Rotation    math3d.Vec3 // Euler radians, applied Z then X then Y
	Translation math3d.Vec3
}

// IdentityTransform returns unit scale, no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{Scale: math3d.One3()}
}

// Matrix returns Scale × RotZ × RotX × RotY × Translate.
func (t Transform) Matrix() math3d.Mat4 {
	return math3d.Compose(t.Scale, t.Rotation, t.Translation)
}

// RotationMatrix returns RotZ × RotX × RotY without scale or translation.
func (t Transform) RotationMatrix() math3d.Mat4 {
	return math3d.RotationZXY(t.Rotation)
}
