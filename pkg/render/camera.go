package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/taigrr/diorama/pkg/math3d"
)

// Camera describes a viewpoint by eye, target and up vectors plus a
// perspective frustum. View and projection matrices are derived by Refresh.
type Camera struct {
	Eye    math3d.Vec3
	Target math3d.Vec3
	Up     math3d.Vec3

	// Rotation is the camera orientation as Z-X-Y Euler angles. Orbit derives
	// Eye and Up from it, and billboards cancel it, so it must describe the
	// same orientation as Eye/Target/Up whenever either is in use.
	Rotation math3d.Vec3

	// Projection parameters
	FovY        float64 // Vertical field of view in radians, within (0, π)
	AspectRatio float64 // Width / Height
	NearZ       float64 // Near clipping plane
	FarZ        float64 // Far clipping plane

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
}

// NewCamera creates a camera 50 units behind the origin looking down +Z.
func NewCamera() *Camera {
	c := &Camera{
		Eye:         math3d.V3(0, 0, -50),
		Target:      math3d.Zero3(),
		Up:          math3d.Up(),
		FovY:        math3d.DegToRad(45),
		AspectRatio: 16.0 / 9.0,
		NearZ:       0.1,
		FarZ:        1000,
	}
	if err := c.Refresh(); err != nil {
		panic(err)
	}
	return c
}

// SetAspect sets the aspect ratio and refreshes. A ratio Refresh rejects
// is not kept.
func (c *Camera) SetAspect(aspect float64) error {
	prev := c.AspectRatio
	c.AspectRatio = aspect
	if err := c.Refresh(); err != nil {
		c.AspectRatio = prev
		return err
	}
	return nil
}

// Refresh recomputes the view and projection matrices. Degenerate input
// (eye on target, up parallel to the view direction, FOV outside (0, π),
// bad aspect or clip planes) returns an error wrapping math3d.ErrDegenerate
// and leaves the previous matrices in place.
func (c *Camera) Refresh() error {
	view, err := math3d.LookAt(c.Eye, c.Target, c.Up)
	if err != nil {
		return errors.Wrap(err, "camera view")
	}
	proj, err := math3d.Perspective(c.FovY, c.AspectRatio, c.NearZ, c.FarZ)
	if err != nil {
		return errors.Wrap(err, "camera projection")
	}

	c.viewMatrix = view
	c.projMatrix = proj
	c.viewProjMatrix = view.Mul(proj)
	return nil
}

// ViewMatrix returns the view matrix from the last successful Refresh.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix from the last successful Refresh.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return c.projMatrix
}

// ViewProjectionMatrix returns View × Projection.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.viewProjMatrix
}

// Forward returns the normalized view direction, or the zero vector when
// eye and target coincide.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Eye).Normalize()
}

// FOVDegrees returns the vertical field of view in degrees.
func (c *Camera) FOVDegrees() float64 {
	return math3d.RadToDeg(c.FovY)
}

// SetFOVDegrees sets the vertical field of view from degrees.
func (c *Camera) SetFOVDegrees(deg float64) {
	c.FovY = math3d.DegToRad(deg)
}

// Orbit places the eye distance units behind Target along the direction
// given by Rotation, and sets Up to match. Forward is +Z rotated by Rotation.
func (c *Camera) Orbit(distance float64) {
	rot := math3d.RotationZXY(c.Rotation)
	forward := rot.MulVec3Dir(math3d.Forward())
	c.Eye = c.Target.Sub(forward.Scale(distance))
	c.Up = rot.MulVec3Dir(math3d.Up())
}

// Rotate adds to the Euler rotation, keeping pitch short of straight up or
// down so the orbit never loses its up vector.
func (c *Camera) Rotate(deltaPitch, deltaYaw, deltaRoll float64) {
	c.Rotation = c.Rotation.Add(math3d.V3(deltaPitch, deltaYaw, deltaRoll))

	const maxPitch = math.Pi/2 - 0.01
	c.Rotation.X = math.Max(-maxPitch, math.Min(maxPitch, c.Rotation.X))
	c.Rotation.Y = math3d.WrapAngle(c.Rotation.Y)
}

// Pick reports whether the ray from Eye through Target hits the sphere.
// See RayHitsSphere for the exact test.
func (c *Camera) Pick(s Sphere) (bool, error) {
	return RayHitsSphere(c.Eye, c.Target, s)
}

// Frustum returns the view frustum from the last successful Refresh.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.viewProjMatrix)
}
