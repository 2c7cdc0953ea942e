// Package event defines the calendar event domain types for almanac.
package event

import (
	"errors"
	"strings"
	"time"

	"github.com/javiermolinar/almanac/internal/interval"
)

// Validation errors.
var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrEndBeforeStart = errors.New("end must not be before start")
	ErrEmptyInterval  = errors.New("event must last at least a minute")
)

// Domain errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventOverlap  = errors.New("event overlaps an existing event")
)

// Event is a calendar event. Identity is the ID; the content fields change
// only through explicit edit operations.
type Event struct {
	ID          string
	Title       string
	Description string
	interval.Interval
	CreatedAt time.Time
}

// Draft holds the editable fields of an event, used for create and update.
type Draft struct {
	Title       string
	Description string
	interval.Interval
}

// NewDraft validates the fields and returns a Draft.
func NewDraft(title, description string, iv interval.Interval) (Draft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Draft{}, ErrEmptyTitle
	}
	if !iv.Valid() {
		return Draft{}, ErrEndBeforeStart
	}
	if iv.Start.Equal(iv.End) && !iv.AllDay {
		return Draft{}, ErrEmptyInterval
	}
	return Draft{Title: title, Description: description, Interval: iv}, nil
}

// Draft returns the editable fields of e.
func (e Event) Draft() Draft {
	return Draft{Title: e.Title, Description: e.Description, Interval: e.Interval}
}

// Duration returns the event duration in minutes.
func (e Event) Duration() int {
	return interval.Minutes(e.Interval)
}

func (e Event) String() string {
	return e.Title + " [" + e.Interval.String() + "]"
}

// OverlapsWith returns true if this event overlaps with another event.
func (e Event) OverlapsWith(other Event) bool {
	return interval.Overlaps(e.Interval, other.Interval)
}
