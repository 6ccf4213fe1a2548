package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/stage"
)

// hud draws a one line status bar on the top terminal row.
type hud struct {
	fps        float64
	fpsFrames  int
	fpsElapsed float64

	bar   lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	alert lipgloss.Style
}

func newHUD() *hud {
	bar := lipgloss.NewStyle().Background(lipgloss.Color("#1c1c24"))
	return &hud{
		bar:   bar,
		label: bar.Foreground(lipgloss.Color("#7a7a8c")),
		value: bar.Foreground(lipgloss.Color("#e8e8f0")).Bold(true),
		alert: bar.Foreground(lipgloss.Color("#f05a3c")).Bold(true),
	}
}

// tick counts a frame that took dt seconds and refreshes the FPS figure
// once a second of frame time has passed.
func (h *hud) tick(dt float64) {
	h.fpsFrames++
	h.fpsElapsed += dt
	if h.fpsElapsed >= 1 {
		h.fps = float64(h.fpsFrames) / h.fpsElapsed
		h.fpsFrames = 0
		h.fpsElapsed = 0
	}
}

func (h *hud) field(name, value string) string {
	return h.label.Render(" "+name+" ") + h.value.Render(value)
}

// line formats the status without positioning.
func (h *hud) line(st stage.Status, r *render.Rasterizer) string {
	parts := []string{
		h.field("fps", fmt.Sprintf("%.0f", h.fps)),
		h.field("cam", st.Camera.String()),
		h.field("pos", fmt.Sprintf("%.1f,%.1f,%.1f", st.Position.X, st.Position.Y, st.Position.Z)),
		h.field("hdg", fmt.Sprintf("%.0f°", math3d.RadToDeg(st.Heading))),
		h.field("fov", fmt.Sprintf("%.0f°", st.FOV)),
		h.field("focus", st.Focus),
	}
	if r != nil {
		c := r.CullingStats
		parts = append(parts, h.field("drawn", fmt.Sprintf("%d/%d", c.MeshesDrawn, c.MeshesTested)))
		if r.Wireframe {
			parts = append(parts, h.value.Render(" x-ray"))
		}
	}
	if st.Jumping {
		parts = append(parts, h.value.Render(" jump"))
	}
	if st.Hits > 0 {
		parts = append(parts, h.alert.Render(fmt.Sprintf(" HIT x%d", st.Hits)))
	}
	return strings.Join(parts, h.bar.Render(" "))
}

// render returns the escape sequence that redraws row 1.
func (h *hud) render(width int, st stage.Status, r *render.Rasterizer) string {
	const clearLine = "\x1b[2K"
	line := h.bar.Width(width).MaxWidth(width).Render(h.line(st, r))
	return "\x1b[1;1H" + clearLine + line
}
