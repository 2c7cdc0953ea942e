package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/drag"
	"github.com/javiermolinar/almanac/internal/tui/view"
)

// Layout constants.
const (
	headerLines = 2 // Title + all-day line
	footerLines = 3 // Prompt + status + help
	// tableChrome is the border and header rows lipgloss adds to the table.
	tableChrome = 4
)

// View renders the day view.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	appH, appV := m.styles.AppStyle.GetFrameSize()
	innerW := m.width - appH
	innerH := m.height - appV
	gridH := innerH - headerLines - footerLines
	if innerW <= 0 || gridH <= tableChrome {
		return "Terminal too small"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(innerW),
		view.RenderTimeline(m.timelineViewState(innerW, gridH)),
		view.RenderFooter(m.footerViewState(innerW)),
	)
	return view.PadLinesWithBackground(m.styles.AppStyle.Render(content), m.width, m.height, m.styles.colorBg)
}

func (m Model) renderHeader(width int) string {
	midnight := m.day.Date(m.tl.loc)
	title := m.styles.TitleStyle.Render(view.HeaderLabel(midnight, m.now().In(m.tl.loc)))

	stateStyle := m.styles.StateStyle
	state := m.entry.State.String()
	if m.loading || m.entry.State != cache.StateConfirmed {
		stateStyle = m.styles.StatePendingStyle
	}
	if m.loading {
		state = "loading"
	}
	line := title + stateStyle.Render("  ["+state+"]")

	allDay := "All day: -"
	if len(m.allDay) > 0 {
		titles := make([]string, len(m.allDay))
		for i, e := range m.allDay {
			titles[i] = e.Title
		}
		allDay = "All day: " + strings.Join(titles, ", ")
	}
	return view.PlaceBox(width, headerLines, lipgloss.Top, line+"\n"+m.styles.StateStyle.Render(allDay), m.styles.colorBg)
}

func (m Model) timelineViewState(width, gridH int) view.TimelineViewState {
	editing := m.editing()
	rows := m.tl.rows(m.timed, editing)

	visible := gridH - tableChrome
	offset := 0
	if focus := m.focusRow(rows); focus >= visible {
		offset = min(focus-visible/2, len(rows)-visible)
	}
	rows = rows[offset:min(offset+visible, len(rows))]

	state := view.TimelineViewState{
		InnerW:      width,
		GridH:       gridH,
		Header:      "Events",
		Labels:      make([]string, len(rows)),
		Cells:       make([]string, len(rows)),
		CellStyles:  make([]lipgloss.Style, len(rows)),
		LabelStyle:  m.styles.TimeLabelStyle,
		HeaderStyle: m.styles.HeaderStyle,
		BorderStyle: m.styles.BorderStyle,
		Bg:          m.styles.colorBg,
	}

	editingLabeled := false
	for i, r := range rows {
		state.Labels[i] = r.Start.Format("15:04")
		if r.Start.Minute() == 0 {
			state.Labels[i] = m.styles.TimeLabelHourStyle.Render(state.Labels[i])
		}

		style := m.styles.EmptyCellStyle
		if r.Event >= 0 {
			e := m.timed[r.Event]
			switch {
			case r.Event == m.selected && m.session == nil:
				style = m.styles.EventSelectedStyle
			case r.Event%2 == 1:
				style = m.styles.EventAltStyle
			default:
				style = m.styles.EventStyle
			}
			if r.First {
				state.Cells[i] = e.Title + "  " + view.FormatSpan(e.Start, e.End)
			}
		}

		if r.Editing {
			style = m.styles.EditingStyle
			if m.handleRow(r) {
				style = m.styles.EditingHandleStyle
			}
			if !editingLabeled {
				state.Cells[i] = m.editingLabel()
				editingLabeled = true
			} else {
				state.Cells[i] = ""
			}
		}
		state.CellStyles[i] = style
	}
	return state
}

// focusRow is the row the view keeps on screen: the edited interval's
// active handle, or the selected event.
func (m Model) focusRow(rows []Row) int {
	mpr := m.tl.minutesPerRow
	if m.session != nil {
		iv := m.session.Interval()
		if m.session.Active(drag.Bottom) {
			return rowOf(rows, iv.End.Add(-time.Minute), mpr)
		}
		return rowOf(rows, iv.Start, mpr)
	}
	if e, ok := m.selectedEvent(); ok {
		return rowOf(rows, e.Start, mpr)
	}
	return rowOf(rows, m.day.Date(m.tl.loc).Add(time.Duration(m.tl.dayStart)*time.Minute), mpr)
}

// handleRow reports whether r holds a grabbed handle of the session.
func (m Model) handleRow(r Row) bool {
	iv := m.session.Interval()
	rowEnd := r.Start.Add(time.Duration(m.tl.minutesPerRow) * time.Minute)
	if m.session.Active(drag.Top) && !iv.Start.Before(r.Start) && iv.Start.Before(rowEnd) {
		return true
	}
	last := iv.End.Add(-time.Minute)
	return m.session.Active(drag.Bottom) && !last.Before(r.Start) && last.Before(rowEnd)
}

func (m Model) editingLabel() string {
	iv := m.session.Interval()
	label := view.FormatSpan(iv.Start, iv.End) + " (" + view.FormatDuration(int(iv.End.Sub(iv.Start)/time.Minute)) + ")"
	if m.session.Event != nil {
		return m.session.Event.Title + "  " + label
	}
	return "New event  " + label
}

func (m Model) footerViewState(width int) view.FooterViewState {
	statusStyle := m.styles.StatusStyle
	if m.statusErr {
		statusStyle = m.styles.ErrorStyle
	}
	status := m.statusMsg
	if m.mode == ModeConfirm {
		if e, ok := m.selectedEvent(); ok {
			status = "Delete " + e.Title + "? (y/n)"
			statusStyle = m.styles.ErrorStyle
		}
	}

	return view.FooterViewState{
		InnerW:      width,
		FooterH:     footerLines,
		PromptText:  m.prompt.View(),
		ShowPrompt:  m.mode == ModePrompt,
		StatusText:  status,
		HelpText:    m.helpText(),
		PromptStyle: m.styles.PromptStyle,
		StatusStyle: statusStyle,
		HelpStyle:   m.styles.HelpStyle,
		Bg:          m.styles.colorBg,
	}
}

func (m Model) helpText() string {
	switch m.mode {
	case ModeEdit:
		return "K/J: move start  k/j: move end  enter: name & save  esc: cancel"
	case ModePrompt:
		return "enter: save  esc: back  title | description"
	case ModeConfirm:
		return "y: delete  any other key: keep"
	default:
		return "h/l: day  t: today  j/k: select  n: new  e: edit  d: delete  y: copy  q: quit"
	}
}
