package models

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// addQuad appends a square face centered at c with outward normal n and
// half-extent h. v is the in-plane up direction; the right direction is
// n × v, which makes the corner order below wind clockwise seen from n.
func (m *Mesh) addQuad(c, n, v math3d.Vec3, h float64) {
	u := n.Cross(v).Scale(h)
	v = v.Scale(h)

	base := len(m.Vertices)
	corners := [4]struct {
		pos math3d.Vec3
		uv  math3d.Vec2
	}{
		{c.Sub(u).Sub(v), math3d.V2(0, 0)},
		{c.Sub(u).Add(v), math3d.V2(0, 1)},
		{c.Add(u).Add(v), math3d.V2(1, 1)},
		{c.Add(u).Sub(v), math3d.V2(1, 0)},
	}
	for _, k := range corners {
		m.Vertices = append(m.Vertices, MeshVertex{Position: k.pos, Normal: n, UV: k.uv})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 1, base + 2}},
		Face{V: [3]int{base, base + 2, base + 3}},
	)
}

// Quad returns a size x size square in the XY plane whose front faces -Z,
// toward an unrotated camera.
func Quad(size float64) *Mesh {
	m := NewMesh("quad")
	m.addQuad(math3d.Zero3(), math3d.Forward().Negate(), math3d.Up(), size/2)
	m.CalculateBounds()
	return m
}

// Cube returns an axis-aligned cube of edge length size centered on the
// origin, with flat normals and one full texture per face.
func Cube(size float64) *Mesh {
	m := NewMesh("cube")
	h := size / 2
	faces := []struct{ n, v math3d.Vec3 }{
		{math3d.V3(1, 0, 0), math3d.Up()},
		{math3d.V3(-1, 0, 0), math3d.Up()},
		{math3d.V3(0, 1, 0), math3d.Forward()},
		{math3d.V3(0, -1, 0), math3d.Forward()},
		{math3d.V3(0, 0, 1), math3d.Up()},
		{math3d.V3(0, 0, -1), math3d.Up()},
	}
	for _, f := range faces {
		m.addQuad(f.n.Scale(h), f.n, f.v, h)
	}
	m.CalculateBounds()
	return m
}

// UVSphere returns a sphere of the given radius with rings latitude bands
// and segments longitude bands. Normals point outward from the center.
func UVSphere(radius float64, rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	m := NewMesh("sphere")
	for i := 0; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			n := math3d.V3(math.Sin(phi)*math.Cos(theta), math.Cos(phi), math.Sin(phi)*math.Sin(theta))
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       math3d.V2(float64(j)/float64(segments), 1-float64(i)/float64(rings)),
			})
		}
	}

	stride := segments + 1
	for i := range rings {
		for j := range segments {
			a := i*stride + j
			b := a + stride
			c := b + 1
			d := a + 1
			// Pole rows collapse one triangle of each band to a point.
			if i > 0 {
				m.Faces = append(m.Faces, Face{V: [3]int{a, d, c}})
			}
			if i < rings-1 {
				m.Faces = append(m.Faces, Face{V: [3]int{a, c, b}})
			}
		}
	}
	m.CalculateBounds()
	return m
}
