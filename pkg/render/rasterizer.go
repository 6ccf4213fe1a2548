package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// MeshRenderer is the geometry a draw call references. The models package
// implements it; render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// DrawCall is one mesh drawn with the matrices current at submission.
// Clip position is pos × World × View × Projection.
type DrawCall struct {
	Mesh       MeshRenderer
	World      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	Texture    TextureID
}

// Submitter consumes draw calls.
type Submitter interface {
	Submit(call DrawCall)
}

// CullingStats tracks frustum culling per frame.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling
}

// Rasterizer draws submitted meshes into a framebuffer with a depth buffer,
// perspective-correct texturing and per-vertex lighting.
type Rasterizer struct {
	fb       *Framebuffer
	zbuffer  []float64 // Depth buffer (1D array, row-major)
	textures *TextureBank

	LightDir               math3d.Vec3  // World-space direction toward the light
	Wireframe              bool         // Draw triangle edges instead of filling
	WireColor              Color        // Edge color in wireframe mode
	DisableBackfaceCulling bool         // If true, render both sides of triangles
	CullingStats           CullingStats // Statistics for debugging/benchmarking
}

// NewRasterizer creates a rasterizer drawing into fb with textures from bank.
func NewRasterizer(fb *Framebuffer, bank *TextureBank) *Rasterizer {
	r := &Rasterizer{
		textures:  bank,
		LightDir:  math3d.V3(0.5, 1, -0.3).Normalize(),
		WireColor: RGB(0, 255, 128),
	}
	r.SetTarget(fb)
	return r
}

// SetTarget switches the framebuffer and resizes the depth buffer to match.
func (r *Rasterizer) SetTarget(fb *Framebuffer) {
	r.fb = fb
	if fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, fb.Width*fb.Height)
	r.ClearDepth()
}

// Framebuffer returns the current target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// BeginFrame clears color, depth and culling stats.
func (r *Rasterizer) BeginFrame(background Color) {
	if r.fb != nil {
		r.fb.Clear(background)
	}
	r.ClearDepth()
	r.CullingStats = CullingStats{}
}

// Submit draws one mesh immediately.
func (r *Rasterizer) Submit(call DrawCall) {
	if r.fb == nil || call.Mesh == nil {
		return
	}
	viewProj := call.View.Mul(call.Projection)

	if bounded, ok := call.Mesh.(BoundedMeshRenderer); ok {
		r.CullingStats.MeshesTested++
		lo, hi := bounded.GetBounds()
		box := NewAABB(lo, hi).Transform(call.World)
		if !NewFrustumFromMatrix(viewProj).IntersectAABB(box) {
			r.CullingStats.MeshesCulled++
			return
		}
		r.CullingStats.MeshesDrawn++
	}

	mvp := call.World.Mul(viewProj)
	light := r.LightDir.Normalize()
	tex := r.textures.Get(call.Texture)

	for i := range call.Mesh.TriangleCount() {
		face := call.Mesh.GetFace(i)

		var tri [3]clipVertex
		for k, idx := range face {
			pos, normal, uv := call.Mesh.GetVertex(idx)
			worldNormal := call.World.MulVec3Dir(normal).Normalize()
			tri[k] = clipVertex{
				clip:      mvp.MulVec4(math3d.V4FromV3(pos, 1)),
				uv:        uv,
				intensity: 0.3 + 0.7*math.Max(0, worldNormal.Dot(light)), // Ambient + diffuse
			}
		}

		if r.Wireframe {
			r.drawEdges(tri)
			continue
		}
		r.fillTriangle(tri, tex)
	}
}

// clipVertex is a vertex after the full transform, before the divide.
type clipVertex struct {
	clip      math3d.Vec4
	uv        math3d.Vec2
	intensity float64
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // Depth (0 near, 1 far)
	W    float64 // Clip W, the view-space depth
}

// toScreen divides by W and maps NDC to pixels. Ok is false for vertices
// on or behind the eye plane, which the rasterizer does not clip.
func (r *Rasterizer) toScreen(v math3d.Vec4) (screenVertex, bool) {
	if v.W <= math3d.Epsilon {
		return screenVertex{}, false
	}
	ndc := v.PerspectiveDivide()
	return screenVertex{
		X: (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y: (1 - ndc.Y) * 0.5 * float64(r.Height()), // Y flipped
		Z: ndc.Z,
		W: v.W,
	}, true
}

// fillTriangle rasterizes a textured triangle with Gouraud shading.
// Per-vertex lighting is interpolated, then modulated with the texture.
func (r *Rasterizer) fillTriangle(tri [3]clipVertex, tex *Texture) {
	var sv [3]screenVertex
	for i := range 3 {
		var ok bool
		if sv[i], ok = r.toScreen(tri[i].clip); !ok {
			return
		}
	}

	// Backface culling (using screen-space winding). Front faces wind
	// clockwise, which is a positive cross product with Y pointing down.
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	cross := edge1.X*edge2.Y - edge1.Y*edge2.X
	if cross == 0 || (cross < 0 && !r.DisableBackfaceCulling) {
		return
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	// Precompute perspective-correct interpolation factors (1/w for each vertex)
	var invW [3]float64
	for i := range 3 {
		invW[i] = 1.0 / sv[i].W
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z < 0 || z > 1 || z >= r.getDepth(x, y) {
				continue
			}

			// Perspective-correct interpolation
			w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
			oneOverW := w0 + w1 + w2

			u := (w0*tri[0].uv.X + w1*tri[1].uv.X + w2*tri[2].uv.X) / oneOverW
			v := (w0*tri[0].uv.Y + w1*tri[1].uv.Y + w2*tri[2].uv.Y) / oneOverW
			intensity := (w0*tri[0].intensity + w1*tri[1].intensity + w2*tri[2].intensity) / oneOverW

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, MultiplyColor(tex.Sample(u, v), intensity))
		}
	}
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
