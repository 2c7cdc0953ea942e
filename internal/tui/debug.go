package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// logKeyPress logs a key press with the mode it arrived in.
func (m Model) logKeyPress(msg tea.KeyMsg) {
	m.logger.Debug("key press", "key", msg.String(), "mode", m.mode.String(), "day", m.day.String())
}

// setModeLogged changes the mode and logs the transition.
func (m *Model) setModeLogged(to Mode, reason string) {
	if m.mode != to {
		m.logger.Debug("mode change", "from", m.mode.String(), "to", to.String(), "reason", reason)
	}
	m.mode = to
}
