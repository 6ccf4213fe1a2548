package render

import (
	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/math3d"
)

// Sphere is a bounding sphere used for picking.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// RayHitsSphere tests the ray from eye through target against s.
//
// This is a closest-approach test: the ray's distance to the sphere center
// must be below the radius and the center must not lie behind the eye. It
// ignores the far plane and occlusion, and an eye inside a sphere whose
// center is behind it does not count as a hit.
func RayHitsSphere(eye, target math3d.Vec3, s Sphere) (bool, error) {
	ray, err := target.Sub(eye).NormalizeSafe()
	if err != nil {
		return false, errors.Wrap(err, "pick ray")
	}
	toCenter := s.Center.Sub(eye)
	if ray.Dot(toCenter) < 0 {
		return false, nil
	}
	return ray.Cross(toCenter).Len() < s.Radius, nil
}
