package render

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// minClipW keeps clipped line endpoints in front of the eye.
const minClipW = 1e-3

// drawEdges outlines a triangle in clip space.
func (r *Rasterizer) drawEdges(tri [3]clipVertex) {
	r.drawClipLine(tri[0].clip, tri[1].clip, r.WireColor)
	r.drawClipLine(tri[1].clip, tri[2].clip, r.WireColor)
	r.drawClipLine(tri[2].clip, tri[0].clip, r.WireColor)
}

// drawClipLine draws a clip-space segment, trimming the part behind the eye.
func (r *Rasterizer) drawClipLine(a, b math3d.Vec4, color Color) {
	if a.W < minClipW && b.W < minClipW {
		return
	}
	if a.W < minClipW {
		a = clipToW(a, b)
	} else if b.W < minClipW {
		b = clipToW(b, a)
	}

	sa, _ := r.toScreen(a)
	sb, _ := r.toScreen(b)
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}

// clipToW moves out along the segment toward in until W reaches minClipW.
func clipToW(out, in math3d.Vec4) math3d.Vec4 {
	t := (minClipW - out.W) / (in.W - out.W)
	return math3d.V4(
		out.X+(in.X-out.X)*t,
		out.Y+(in.Y-out.Y)*t,
		out.Z+(in.Z-out.Z)*t,
		minClipW,
	)
}

// DrawLine3D draws a world-space line with the given view-projection.
// Lines ignore the depth buffer.
func (r *Rasterizer) DrawLine3D(p1, p2 math3d.Vec3, viewProj math3d.Mat4, color Color) {
	if r.fb == nil {
		return
	}
	r.drawClipLine(
		viewProj.MulVec4(math3d.V4FromV3(p1, 1)),
		viewProj.MulVec4(math3d.V4FromV3(p2, 1)),
		color,
	)
}

// DrawAxes draws the world X (red), Y (green) and Z (blue) axes.
func (r *Rasterizer) DrawAxes(viewProj math3d.Mat4, length float64) {
	origin := math3d.Zero3()
	r.DrawLine3D(origin, math3d.V3(length, 0, 0), viewProj, ColorRed)
	r.DrawLine3D(origin, math3d.V3(0, length, 0), viewProj, ColorGreen)
	r.DrawLine3D(origin, math3d.V3(0, 0, length), viewProj, ColorBlue)
}

// DrawGrid draws a grid on the XZ plane at height y.
func (r *Rasterizer) DrawGrid(viewProj math3d.Mat4, y, size, step float64, color Color) {
	if step <= 0 {
		return
	}
	for i := -size; i <= size; i += step {
		r.DrawLine3D(math3d.V3(i, y, -size), math3d.V3(i, y, size), viewProj, color)
		r.DrawLine3D(math3d.V3(-size, y, i), math3d.V3(size, y, i), viewProj, color)
	}
}

// DrawCross draws a small 3D cross centered on pos.
func (r *Rasterizer) DrawCross(pos math3d.Vec3, size float64, viewProj math3d.Mat4, color Color) {
	h := size / 2
	r.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), viewProj, color)
	r.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), viewProj, color)
	r.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), viewProj, color)
}
