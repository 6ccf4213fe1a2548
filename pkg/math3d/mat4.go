package math3d

import (
	"math"

	"github.com/pkg/errors"
)

// Mat4 is a 4x4 matrix stored in row-major order, transforming row vectors.
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// For an affine transform the rows are the images of the basis vectors
// and the last row carries the translation:
// | Xx Xy Xz 0 |   X,Y,Z = basis vectors (rotation/scale)
// | Yx Yy Yz 0 |   T = translation
// | Zx Zy Zz 0 |
// | Tx Ty Tz 1 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a left-handed view matrix looking from eye towards target.
//
// The basis is forward = normalize(target - eye), right = normalize(up × forward),
// up' = forward × right. It fails with ErrDegenerate when eye and target
// coincide or up is parallel to the view direction.
func LookAt(eye, target, up Vec3) (Mat4, error) {
	f, err := target.Sub(eye).NormalizeSafe()
	if err != nil {
		return Identity(), errors.Wrap(err, "look-at forward")
	}
	r, err := up.Cross(f).NormalizeSafe()
	if err != nil {
		return Identity(), errors.Wrapf(ErrDegenerate, "look-at up %v parallel to forward %v", up, f)
	}
	u := f.Cross(r)

	return Mat4{
		r.X, u.X, f.X, 0,
		r.Y, u.Y, f.Y, 0,
		r.Z, u.Z, f.Z, 0,
		-r.Dot(eye), -u.Dot(eye), -f.Dot(eye), 1,
	}, nil
}

// Perspective creates a left-handed perspective projection matrix mapping
// view depth [near, far] to clip depth [0, 1], with clip W = view Z.
// fovy is the vertical field of view in radians, aspect is width/height.
func Perspective(fovy, aspect, near, far float64) (Mat4, error) {
	switch {
	case !(fovy > 0 && fovy < math.Pi):
		return Identity(), errors.Wrapf(ErrDegenerate, "fov %v outside (0, π)", fovy)
	case !(aspect > 0) || math.IsInf(aspect, 1):
		return Identity(), errors.Wrapf(ErrDegenerate, "aspect ratio %v", aspect)
	case !(near > 0) || !(far > near):
		return Identity(), errors.Wrapf(ErrDegenerate, "clip planes near=%v far=%v", near, far)
	}

	h := 1.0 / math.Tan(fovy/2)
	w := h / aspect
	q := far / (far - near)

	return Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, q, 1,
		0, 0, -q * near, 0,
	}, nil
}

// Mul multiplies two matrices: a * b. Under the row-vector convention the
// result applies a first, then b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := v.X*m[3] + v.Y*m[7] + v.Z*m[11] + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(v.X*m[0] + v.Y*m[4] + v.Z*m[8] + m[12]) / w,
		(v.X*m[1] + v.Y*m[5] + v.Z*m[9] + m[13]) / w,
		(v.X*m[2] + v.Y*m[6] + v.Z*m[10] + m[14]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		v.X*m[0] + v.Y*m[4] + v.Z*m[8],
		v.X*m[1] + v.Y*m[5] + v.Z*m[9],
		v.X*m[2] + v.Y*m[6] + v.Z*m[10],
	}
}

// MulVec4 transforms a Vec4 (v * M).
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return v.Transform(m)
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// ApproxEqual reports whether every element of m and o differs by at most tol.
func (m Mat4) ApproxEqual(o Mat4, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > tol {
			return false
		}
	}
	return true
}
