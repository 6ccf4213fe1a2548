package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Billboard returns the Euler rotation that keeps a node facing a camera
// with the given Z-X-Y rotation: pitch and roll negated, yaw turned half a
// circle and wrapped into [0, 2π).
//
// The result equals a half turn about Y followed by the camera rotation, so
// the node's +Z points back along the camera's view direction and its +Y
// matches the camera's up. That only holds while the node's parents are
// unrotated and the camera rotation uses the same Z-X-Y order.
func Billboard(cameraRotation math3d.Vec3) math3d.Vec3 {
	return math3d.V3(
		-cameraRotation.X,
		math3d.WrapAngle(cameraRotation.Y+math.Pi),
		-cameraRotation.Z,
	)
}
