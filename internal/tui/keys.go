package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/almanac/internal/drag"
	"github.com/javiermolinar/almanac/internal/period"
	"github.com/javiermolinar/almanac/internal/tui/commands"
	"github.com/javiermolinar/almanac/internal/tui/input"
	"github.com/javiermolinar/almanac/internal/tui/view"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logKeyPress(msg)

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeEdit:
		return m.handleEditKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Day navigation
	case "h", "left":
		return m.showDay(period.DayOf(m.day.Date(m.tl.loc).AddDate(0, 0, -1)))
	case "l", "right":
		return m.showDay(period.DayOf(m.day.Date(m.tl.loc).AddDate(0, 0, 1)))
	case "t":
		return m.showDay(period.DayOf(m.now().In(m.tl.loc)))

	// Event selection
	case "j", "down":
		if m.selected < len(m.timed)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "n":
		return m, commands.NewEvent(m.cal, m.day, m.newEventInterval(), m.pixelsPerMinute())
	case "e", "enter":
		if e, ok := m.selectedEvent(); ok {
			return m, commands.EditEvent(m.cal, m.day, e, m.pixelsPerMinute())
		}
	case "d":
		if _, ok := m.selectedEvent(); ok {
			m.setModeLogged(ModeConfirm, "delete requested")
		}
	case "y":
		if e, ok := m.selectedEvent(); ok {
			return m, commands.CopyToClipboard(m.day.String() + " " + view.FormatSpan(e.Start, e.End))
		}
	}
	return m, nil
}

// handleEditKeys drags the handles of the session's interval. Upper-case
// keys move the top handle, lower-case keys the bottom one; each press is
// one row.
func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.session = nil
		m.setModeLogged(ModeNormal, "edit cancelled")
	case "K":
		m.dragHandle(drag.Top, -1)
	case "J":
		m.dragHandle(drag.Top, 1)
	case "k", "up":
		m.dragHandle(drag.Bottom, -1)
	case "j", "down":
		m.dragHandle(drag.Bottom, 1)
	case "enter":
		m.session.Release()
		m.prompt.SetValue("")
		if e := m.session.Event; e != nil {
			m.prompt.SetValue(input.JoinTitle(e.Title, e.Description))
		}
		m.prompt.CursorEnd()
		m.setModeLogged(ModePrompt, "naming event")
		cmd := m.prompt.Focus()
		return m, cmd
	}
	return m, nil
}

// dragHandle grabs h if needed and moves it by rows.
func (m *Model) dragHandle(h drag.Handle, rows int) {
	if !m.session.Active(h) {
		m.session.Release()
		if !m.session.Grab(h) {
			m.setStatus("The "+h.String()+" handle is outside this day", true)
			return
		}
	}

	change, ok := m.session.Drag(h, float64(rows*m.tl.minutesPerRow))
	if !ok {
		return
	}
	m.logger.Debug("interval adjusted",
		"op", change.Op.String(),
		"before", change.Before.String(),
		"after", change.After.String(),
		"corrected", change.Corrected,
		"by", change.By,
	)
	if change.Corrected {
		m.setStatus("Stopped by "+change.By, false)
	}
}

// handlePromptKeys handles the title prompt.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt.Blur()
		m.setModeLogged(ModeEdit, "naming cancelled")
		return m, nil
	case tea.KeyEnter:
		title, desc := input.SplitTitle(m.prompt.Value())
		return m, commands.Save(m.session, title, desc)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the delete confirmation.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.setModeLogged(ModeNormal, "delete answered")
	switch msg.String() {
	case "y", "Y", "enter":
		if e, ok := m.selectedEvent(); ok {
			return m, commands.Delete(m.cal, e)
		}
	}
	return m, nil
}
