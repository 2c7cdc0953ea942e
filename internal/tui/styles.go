package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/almanac/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	colorBg lipgloss.Color

	TitleStyle        lipgloss.Style
	StateStyle        lipgloss.Style
	StatePendingStyle lipgloss.Style

	// Timeline
	TimeLabelStyle     lipgloss.Style
	TimeLabelHourStyle lipgloss.Style
	EmptyCellStyle     lipgloss.Style
	EventStyle         lipgloss.Style
	EventAltStyle      lipgloss.Style // Alternate shade for adjacent events
	EventSelectedStyle lipgloss.Style
	EditingStyle       lipgloss.Style
	EditingHandleStyle lipgloss.Style // Row holding a grabbed handle
	BorderStyle        lipgloss.Style
	HeaderStyle        lipgloss.Style

	// Footer
	PromptStyle lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style

	AppStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	s := &Styles{colorBg: p.Bg}

	s.TitleStyle = base.Bold(true).Foreground(p.Accent)
	s.StateStyle = base.Foreground(p.FgMuted)
	s.StatePendingStyle = base.Foreground(p.Warning).Italic(true)

	s.TimeLabelStyle = base.Foreground(p.FgMuted).Width(6)
	s.TimeLabelHourStyle = s.TimeLabelStyle.Foreground(p.Accent)
	s.EmptyCellStyle = base
	s.EventStyle = lipgloss.NewStyle().Background(p.EventBg).Foreground(p.TextOnEvent)
	s.EventAltStyle = lipgloss.NewStyle().Background(p.EventBgAlt).Foreground(p.TextOnEvent)
	s.EventSelectedStyle = lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true)
	s.EditingStyle = lipgloss.NewStyle().Background(p.EditingBg).Foreground(p.TextOnEditing)
	s.EditingHandleStyle = s.EditingStyle.Bold(true).Underline(true)
	s.BorderStyle = lipgloss.NewStyle().Foreground(p.BgHighlight).Background(p.Bg)
	s.HeaderStyle = base.Bold(true).Foreground(p.Fg)

	s.PromptStyle = base.Foreground(p.Fg)
	s.StatusStyle = base.Foreground(p.Accent)
	s.ErrorStyle = lipgloss.NewStyle().Background(p.Warning).Foreground(p.TextOnWarning)
	s.HelpStyle = base.Foreground(p.FgMuted)

	s.AppStyle = base.Padding(0, 1)
	return s
}
