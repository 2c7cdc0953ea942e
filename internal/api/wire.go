package api

import (
	"time"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Event is the wire shape of an event.
type Event struct {
	ID          int       `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventBody is the request body for create and update.
type EventBody struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
}

// ToEvent converts a wire event, with times expressed in loc.
//
// Older stores mark a whole-day event with date_from == date_to at
// midnight. Such events, and events running exactly midnight to midnight,
// come back as all-day intervals with real bounds.
func ToEvent(w Event, loc *time.Location) event.Event {
	start, end := w.DateFrom.In(loc), w.DateTo.In(loc)

	iv := interval.New(start, end)
	switch {
	case start.Equal(end) && start.Equal(dateutil.TruncateToDay(start)):
		iv = interval.WholeDay(start)
	case interval.IsWholeDay(iv):
		iv.AllDay = true
	}

	return event.Event{
		ID:          w.UUID,
		Title:       w.Title,
		Description: w.Description,
		Interval:    iv,
		CreatedAt:   w.CreatedAt,
	}
}

// ToEvents converts a list of wire events.
func ToEvents(ws []Event, loc *time.Location) []event.Event {
	out := make([]event.Event, 0, len(ws))
	for _, w := range ws {
		out = append(out, ToEvent(w, loc))
	}
	return out
}

// FromEvent converts an event to its wire shape. The numeric id is not
// known outside the store and is left zero.
func FromEvent(e event.Event) Event {
	return Event{
		UUID:        e.ID,
		Title:       e.Title,
		Description: e.Description,
		DateFrom:    e.Start,
		DateTo:      e.End,
		CreatedAt:   e.CreatedAt,
	}
}

// BodyFromDraft builds a create or update body.
func BodyFromDraft(d event.Draft) EventBody {
	return EventBody{
		Title:       d.Title,
		Description: d.Description,
		DateFrom:    d.Start,
		DateTo:      d.End,
	}
}

// Draft converts a request body to a validated draft. The older whole-day
// marker, zero length at midnight, becomes a whole-day interval.
func (b EventBody) Draft() (event.Draft, error) {
	iv := interval.New(b.DateFrom, b.DateTo)
	if b.DateFrom.Equal(b.DateTo) && b.DateFrom.Equal(dateutil.TruncateToDay(b.DateFrom)) {
		iv = interval.WholeDay(b.DateFrom)
	}
	return event.NewDraft(b.Title, b.Description, iv)
}
