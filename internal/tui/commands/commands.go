// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/calendar"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

// Calendar is the part of calendar.Service the TUI drives.
type Calendar interface {
	Location() *time.Location
	Period(ctx context.Context, key period.Key) cache.Entry
	Wait()
	NewEvent(ctx context.Context, day period.Day, iv interval.Interval, pixelsPerMinute float64) (*calendar.Session, error)
	Edit(ctx context.Context, day period.Day, e event.Event, pixelsPerMinute float64) (*calendar.Session, error)
	Delete(ctx context.Context, e *event.Event) error
}

// DayLoadedMsg is sent when a day has been read from the cache.
type DayLoadedMsg struct {
	Day   period.Day
	Entry cache.Entry
	// Waited is set when the read followed the background fetches.
	Waited bool
}

// SessionOpenedMsg is sent when an edit session is ready.
type SessionOpenedMsg struct {
	Session *calendar.Session
}

// EventSavedMsg is sent when an edit session was saved.
type EventSavedMsg struct {
	Event event.Event
}

// EventDeletedMsg is sent when an event was deleted.
type EventDeletedMsg struct {
	Event event.Event
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadDay reads a day through the cache. The entry may be a placeholder
// while the cache fetches it.
func LoadDay(cal Calendar, day period.Day) tea.Cmd {
	return func() tea.Msg {
		return DayLoadedMsg{Day: day, Entry: cal.Period(context.Background(), day)}
	}
}

// WaitForDay blocks until the cache's background fetches are done and
// reads the day again.
func WaitForDay(cal Calendar, day period.Day) tea.Cmd {
	return func() tea.Msg {
		cal.Wait()
		return DayLoadedMsg{Day: day, Entry: cal.Period(context.Background(), day), Waited: true}
	}
}

// NewEvent opens a session for a new event.
func NewEvent(cal Calendar, day period.Day, iv interval.Interval, pixelsPerMinute float64) tea.Cmd {
	return func() tea.Msg {
		ss, err := cal.NewEvent(context.Background(), day, iv, pixelsPerMinute)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SessionOpenedMsg{Session: ss}
	}
}

// EditEvent opens a session for an existing event.
func EditEvent(cal Calendar, day period.Day, e event.Event, pixelsPerMinute float64) tea.Cmd {
	return func() tea.Msg {
		ss, err := cal.Edit(context.Background(), day, e, pixelsPerMinute)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SessionOpenedMsg{Session: ss}
	}
}

// Save stores the session's interval with the given title.
func Save(ss *calendar.Session, title, description string) tea.Cmd {
	return func() tea.Msg {
		e, err := ss.Save(context.Background(), title, description)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("saving event: %w", err)}
		}
		return EventSavedMsg{Event: e}
	}
}

// Delete removes an event.
func Delete(cal Calendar, e event.Event) tea.Cmd {
	return func() tea.Msg {
		if err := cal.Delete(context.Background(), &e); err != nil {
			return ErrMsg{Err: err}
		}
		return EventDeletedMsg{Event: e}
	}
}

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied " + text}
	}
}
