package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TimelineViewState holds the rows of the day timeline. Each row is a time
// label and the text of the cell next to it.
type TimelineViewState struct {
	InnerW      int
	GridH       int
	Header      string
	Labels      []string
	Cells       []string
	CellStyles  []lipgloss.Style
	LabelStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	BorderStyle lipgloss.Style
	Bg          lipgloss.Color
}

// RenderTimeline renders the visible rows as a two column lipgloss table.
func RenderTimeline(state TimelineViewState) string {
	if state.GridH <= 0 || state.InnerW <= 0 {
		return ""
	}

	rows := make([][]string, len(state.Labels))
	for i, label := range state.Labels {
		cell := ""
		if i < len(state.Cells) {
			cell = state.Cells[i]
		}
		rows[i] = []string{label, cell}
	}

	t := table.New().
		Headers("", state.Header).
		Width(max(state.InnerW-2, 0)).
		Height(state.GridH).
		Border(lipgloss.RoundedBorder()).
		BorderColumn(true).
		BorderRow(false).
		BorderStyle(state.BorderStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return state.HeaderStyle
			case col == 0:
				return state.LabelStyle
			case row >= 0 && row < len(state.CellStyles):
				return state.CellStyles[row]
			default:
				return lipgloss.NewStyle()
			}
		})

	return PlaceBox(state.InnerW, state.GridH, lipgloss.Top, t.Render(), state.Bg)
}
