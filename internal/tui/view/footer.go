package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterViewState holds the strings needed to render the footer section.
type FooterViewState struct {
	InnerW     int
	FooterH    int
	PromptText string
	ShowPrompt bool
	StatusText string
	HelpText   string

	PromptStyle lipgloss.Style
	StatusStyle lipgloss.Style
	HelpStyle   lipgloss.Style
	Bg          lipgloss.Color
}

// RenderFooter renders the prompt, status and help lines. The prompt line
// is left blank while no prompt is open so the layout does not jump.
func RenderFooter(state FooterViewState) string {
	if state.FooterH <= 0 {
		return ""
	}

	prompt := ""
	if state.ShowPrompt {
		prompt = state.PromptText
	}

	s := footerLine(state.InnerW, state.PromptStyle, prompt) + "\n"
	s += footerLine(state.InnerW, state.StatusStyle, state.StatusText) + "\n"
	s += footerLine(state.InnerW, state.HelpStyle, state.HelpText)
	return PlaceBox(state.InnerW, state.FooterH, lipgloss.Bottom, s, state.Bg)
}

func footerLine(width int, style lipgloss.Style, content string) string {
	frameW, _ := style.GetFrameSize()
	contentWidth := max(width-frameW, 0)
	if contentWidth > 0 {
		content = ansi.Truncate(content, contentWidth, "…")
	}
	return style.Width(contentWidth).Render(content)
}
