package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PlaceBox renders content in a lipgloss.Place box with background fill.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(w, h, lipgloss.Left, vAlign, content, lipgloss.WithWhitespaceBackground(bg))
	return PadLinesWithBackground(placed, w, h, bg)
}

// PadLinesWithBackground pads content to width/height with a background color.
// Lines wider than width are left alone.
func PadLinesWithBackground(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	pad := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + pad.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}
