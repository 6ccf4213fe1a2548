package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/pkg/errors"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, botY)),
				},
			})
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Display is a screen that can flush its pending cells.
type Display interface {
	uv.Screen
	Display() error
}

// Presenter copies framebuffers to a terminal screen. The top rows can be
// reserved for a HUD drawn by the caller.
type Presenter struct {
	screen  Display
	cols    int
	rows    int
	HUDRows int
}

// NewPresenter creates a presenter for a screen of cols x rows cells.
func NewPresenter(screen Display, cols, rows, hudRows int) *Presenter {
	return &Presenter{screen: screen, cols: cols, rows: rows, HUDRows: hudRows}
}

// Resize updates the screen size in cells.
func (p *Presenter) Resize(cols, rows int) {
	p.cols, p.rows = cols, rows
}

// FramebufferSize returns the pixel size a framebuffer needs to fill the
// screen below the HUD.
func (p *Presenter) FramebufferSize() (int, int) {
	return p.cols, max(p.rows-p.HUDRows, 1) * 2
}

// Screen returns the underlying screen for HUD drawing.
func (p *Presenter) Screen() uv.Screen {
	return p.screen
}

// Present draws fb below the HUD and flushes the screen.
func (p *Presenter) Present(fb *Framebuffer) error {
	area := image.Rect(0, 0, p.cols, max(p.rows-p.HUDRows, 1))
	fb.Draw(shifted{Screen: p.screen, dy: p.HUDRows}, area)
	return errors.Wrap(p.screen.Display(), "display frame")
}

// shifted offsets cell writes by dy rows.
type shifted struct {
	uv.Screen
	dy int
}

func (s shifted) SetCell(x, y int, c *uv.Cell) {
	s.Screen.SetCell(x, y+s.dy, c)
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack  = color.RGBA{0, 0, 0, 255}
	ColorWhite  = color.RGBA{255, 255, 255, 255}
	ColorRed    = color.RGBA{255, 0, 0, 255}
	ColorGreen  = color.RGBA{0, 255, 0, 255}
	ColorBlue   = color.RGBA{0, 0, 255, 255}
	ColorYellow = color.RGBA{255, 255, 0, 255}
	ColorGray   = color.RGBA{128, 128, 128, 255}
	ColorSky    = color.RGBA{135, 206, 235, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
