package math3d

import "math"

// RotationZXY returns the rotation for Euler angles r (radians), applied
// about Z first, then X, then Y: RotZ(r.Z) × RotX(r.X) × RotY(r.Y).
//
// The order is fixed. Billboards cancel a camera's orientation by negating
// these angles, which only works while every rotation uses this order.
func RotationZXY(r Vec3) Mat4 {
	return RotateZ(r.Z).Mul(RotateX(r.X)).Mul(RotateY(r.Y))
}

// Compose returns Scale(scale) × RotationZXY(rotation) × Translate(translation).
func Compose(scale, rotation, translation Vec3) Mat4 {
	return Scale(scale).Mul(RotationZXY(rotation)).Mul(Translate(translation))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapAngle maps an angle in radians into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// Tiny negatives round up to exactly 2π.
	if a >= 2*math.Pi {
		return 0
	}
	return a
}
