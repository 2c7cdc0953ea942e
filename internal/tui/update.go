package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(msg.Width-12, 10)
		return m, nil

	case commands.DayLoadedMsg:
		if msg.Day != m.day {
			// A late load for a day we already left.
			return m, nil
		}
		return m.applyEntry(msg)

	case commands.SessionOpenedMsg:
		m.session = msg.Session
		m.setModeLogged(ModeEdit, "session opened")
		m.logger.Debug("session opened", "interval", m.session.Interval().String(), "new", m.session.Event == nil)
		return m, nil

	case commands.EventSavedMsg:
		m.session = nil
		m.prompt.Blur()
		m.setModeLogged(ModeNormal, "event saved")
		m.focusID = msg.Event.ID
		m.setStatus("Saved "+msg.Event.Title, false)
		return m, tea.Batch(commands.LoadDay(m.cal, m.day), clearStatusAfter(3*time.Second))

	case commands.EventDeletedMsg:
		m.setStatus("Deleted "+msg.Event.Title, false)
		m.selected = -1
		return m, tea.Batch(commands.LoadDay(m.cal, m.day), clearStatusAfter(3*time.Second))

	case commands.ErrMsg:
		m.logger.Warn("tui command failed", "error", msg.Err)
		m.setStatus(errorText(msg.Err), true)
		m.statusTime = m.now().Add(5 * time.Second)
		if m.mode == ModePrompt && !isValidationError(msg.Err) {
			m.prompt.Blur()
			m.setModeLogged(ModeEdit, "save failed")
		}
		return m, clearStatusAfter(5 * time.Second)

	case commands.StatusMsgCmd:
		m.setStatus(msg.Msg, false)
		return m, clearStatusAfter(3 * time.Second)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyEntry shows a cache entry. A placeholder is shown right away and
// read again once the cache has fetched it.
func (m Model) applyEntry(msg commands.DayLoadedMsg) (Model, tea.Cmd) {
	keepID := m.focusID
	if e, ok := m.selectedEvent(); ok && keepID == "" {
		keepID = e.ID
	}
	m.focusID = ""

	m.entry = msg.Entry
	m.timed, m.allDay = timedEvents(msg.Entry.Events)
	m.selected = -1
	for i, e := range m.timed {
		if e.ID == keepID {
			m.selected = i
		}
	}
	if m.selected < 0 && len(m.timed) > 0 {
		m.selected = 0
	}

	m.logger.Debug("day loaded", "day", msg.Day.String(), "state", msg.Entry.State.String(), "events", len(msg.Entry.Events), "waited", msg.Waited)

	if msg.Entry.State == cache.StatePlaceholder {
		if msg.Waited {
			// The fetch failed; keep what we have rather than spin.
			m.loading = false
			return m, nil
		}
		m.loading = true
		return m, commands.WaitForDay(m.cal, msg.Day)
	}
	m.loading = false
	return m, nil
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, event.ErrEmptyTitle) ||
		errors.Is(err, event.ErrEndBeforeStart) ||
		errors.Is(err, event.ErrEmptyInterval)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, event.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, event.ErrEmptyInterval):
		return "Event needs a duration"
	case errors.Is(err, event.ErrEventOverlap):
		return "Overlaps another event"
	case errors.Is(err, event.ErrEventNotFound):
		return "Event no longer exists"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
