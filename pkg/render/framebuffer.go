package render

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Framebuffer is the color target the rasterizer draws into. Two pixel rows
// share one terminal row, so a scene of n rows needs Height 2n.
type Framebuffer struct {
	Width  int
	Height int

	img *image.RGBA
}

// NewFramebuffer allocates a cleared width x height framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 0), max(height, 0)
	return &Framebuffer{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Image exposes the pixels as an image. It aliases the framebuffer.
func (fb *Framebuffer) Image() *image.RGBA {
	return fb.img
}

// Clear fills every pixel with c.
func (fb *Framebuffer) Clear(c Color) {
	draw.Draw(fb.img, fb.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel writes c at (x, y). Writes outside the buffer are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	fb.img.SetRGBA(x, y, c)
}

// GetPixel reads (x, y), or the zero color outside the buffer.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	return fb.img.RGBAAt(x, y)
}

// DrawLine steps along the longer axis from (x0, y0) to (x1, y1), both
// endpoints included.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		fb.SetPixel(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fb.SetPixel(x0+int(math.Round(t*dx)), y0+int(math.Round(t*dy)), c)
	}
}

// DrawReticle marks the center of the buffer, where the camera's view ray
// lands, with four arms of length size around an open middle pixel.
func (fb *Framebuffer) DrawReticle(size int, c Color) {
	if size <= 0 {
		return
	}
	cx, cy := fb.Width/2, fb.Height/2
	fb.DrawLine(cx-size, cy, cx-1, cy, c)
	fb.DrawLine(cx+1, cy, cx+size, cy, c)
	fb.DrawLine(cx, cy-size, cx, cy-1, c)
	fb.DrawLine(cx, cy+1, cx, cy+size, c)
}

// WritePNG encodes the framebuffer as a PNG.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return errors.Wrap(png.Encode(w, fb.img), "encode png")
}

// SavePNG writes the framebuffer to path as a PNG.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	if err := fb.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close snapshot")
}
