package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/calendar"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

type fakeCalendar struct {
	entry   cache.Entry
	waits   int
	deleted []string
	err     error
}

func (f *fakeCalendar) Location() *time.Location {
	return time.UTC
}

func (f *fakeCalendar) Period(ctx context.Context, key period.Key) cache.Entry {
	e := f.entry
	e.Key = key
	return e
}

func (f *fakeCalendar) Wait() {
	f.waits++
}

func (f *fakeCalendar) NewEvent(ctx context.Context, day period.Day, iv interval.Interval, pixelsPerMinute float64) (*calendar.Session, error) {
	return nil, f.err
}

func (f *fakeCalendar) Edit(ctx context.Context, day period.Day, e event.Event, pixelsPerMinute float64) (*calendar.Session, error) {
	return nil, f.err
}

func (f *fakeCalendar) Delete(ctx context.Context, e *event.Event) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, e.ID)
	return nil
}

var testDay = period.Day{Year: 2025, Month: time.February, Day: 3}

func TestLoadDay(t *testing.T) {
	cal := &fakeCalendar{entry: cache.Entry{State: cache.StatePlaceholder}}

	msg := LoadDay(cal, testDay)()
	loaded, ok := msg.(DayLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want DayLoadedMsg", msg)
	}
	if loaded.Day != testDay || loaded.Entry.Key != testDay {
		t.Errorf("loaded %v / %v, want %v", loaded.Day, loaded.Entry.Key, testDay)
	}
	if loaded.Waited || cal.waits != 0 {
		t.Errorf("LoadDay should not wait, waits = %d", cal.waits)
	}
}

func TestWaitForDay(t *testing.T) {
	cal := &fakeCalendar{entry: cache.Entry{State: cache.StateConfirmed}}

	msg := WaitForDay(cal, testDay)()
	loaded, ok := msg.(DayLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want DayLoadedMsg", msg)
	}
	if !loaded.Waited || cal.waits != 1 {
		t.Errorf("Waited = %t, waits = %d", loaded.Waited, cal.waits)
	}
	if loaded.Entry.State != cache.StateConfirmed {
		t.Errorf("state = %v, want confirmed", loaded.Entry.State)
	}
}

func TestSessionErrors(t *testing.T) {
	boom := errors.New("boom")
	cal := &fakeCalendar{err: boom}
	iv := interval.New(time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC))

	for name, msg := range map[string]any{
		"new":  NewEvent(cal, testDay, iv, 0.25)(),
		"edit": EditEvent(cal, testDay, event.Event{ID: "a", Interval: iv}, 0.25)(),
	} {
		errMsg, ok := msg.(ErrMsg)
		if !ok {
			t.Fatalf("%s: msg = %T, want ErrMsg", name, msg)
		}
		if !errors.Is(errMsg.Err, boom) {
			t.Errorf("%s: err = %v, want boom", name, errMsg.Err)
		}
	}
}

func TestDelete(t *testing.T) {
	cal := &fakeCalendar{}

	msg := Delete(cal, event.Event{ID: "abc", Title: "Standup"})()
	deleted, ok := msg.(EventDeletedMsg)
	if !ok {
		t.Fatalf("msg = %T, want EventDeletedMsg", msg)
	}
	if deleted.Event.Title != "Standup" {
		t.Errorf("deleted title = %q", deleted.Event.Title)
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "abc" {
		t.Errorf("deleted = %v, want [abc]", cal.deleted)
	}

	cal.err = event.ErrEventNotFound
	if _, ok := Delete(cal, event.Event{ID: "abc"})().(ErrMsg); !ok {
		t.Error("expected ErrMsg for a failed delete")
	}
}
