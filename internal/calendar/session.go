package calendar

import (
	"context"
	"fmt"

	"github.com/javiermolinar/almanac/internal/adjust"
	"github.com/javiermolinar/almanac/internal/drag"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

// Session edits the interval of one event on one day. The embedded
// Resizer holds the current interval and the handle gestures.
type Session struct {
	*drag.Resizer

	// Event is the event being edited, or nil for a new one.
	Event *event.Event
	Day   period.Day

	service *Service
}

// NewEvent opens a session for an event that does not exist yet.
func (s *Service) NewEvent(ctx context.Context, day period.Day, iv interval.Interval, pixelsPerMinute float64) (*Session, error) {
	return s.open(ctx, day, nil, iv, pixelsPerMinute)
}

// Edit opens a session for an existing event.
func (s *Service) Edit(ctx context.Context, day period.Day, e event.Event, pixelsPerMinute float64) (*Session, error) {
	return s.open(ctx, day, &e, e.Interval, pixelsPerMinute)
}

func (s *Service) open(ctx context.Context, day period.Day, e *event.Event, iv interval.Interval, pixelsPerMinute float64) (*Session, error) {
	var excludeID string
	if e != nil {
		excludeID = e.ID
	}
	n, err := s.Neighbors(ctx, iv, excludeID)
	if err != nil {
		return nil, fmt.Errorf("resolving neighbors: %w", err)
	}

	a := adjust.Adjuster{
		Period:  day.Interval(s.Location()),
		MinSpan: s.minSpan,
	}
	if n.Prev != nil {
		a.Preceding = []event.Event{*n.Prev}
	}
	if n.Next != nil {
		a.Following = []event.Event{*n.Next}
	}

	return &Session{
		Resizer: drag.NewResizer(a, adjust.State{Interval: iv}, pixelsPerMinute, s.snap),
		Event:   e,
		Day:     day,
		service: s,
	}, nil
}

// Interval returns the interval as edited so far.
func (ss *Session) Interval() interval.Interval {
	return ss.State.Interval
}

// Save stores the edited interval with the given title and description,
// creating the event if the session has none yet.
func (ss *Session) Save(ctx context.Context, title, description string) (event.Event, error) {
	ss.Release()
	d, err := event.NewDraft(title, description, ss.State.Interval)
	if err != nil {
		return event.Event{}, err
	}

	var saved event.Event
	if ss.Event == nil {
		saved, err = ss.service.Create(ctx, d)
	} else {
		saved, err = ss.service.Update(ctx, ss.Event, d)
	}
	if err != nil {
		return event.Event{}, err
	}
	ss.Event = &saved
	return saved, nil
}
