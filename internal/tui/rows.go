package tui

import (
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

// MinutesPerDay is 24 hours * 60 minutes.
const MinutesPerDay = 1440

// Row is one line of the day timeline.
type Row struct {
	Start time.Time
	// Event is the index into the timed events of the event shown on the
	// row, or -1 for a free row.
	Event int
	// First is set on the first row of an event, where its title goes.
	First bool
	// Editing is set when the row lies inside the interval being edited.
	Editing bool
}

// timeline lays the timed events of a day out on rows of a fixed number
// of minutes.
type timeline struct {
	day           period.Day
	loc           *time.Location
	dayStart      int // minutes from midnight, always a row boundary
	dayEnd        int
	minutesPerRow int
}

// rows builds the rows covering the working hours, widened to show every
// event and the edited interval.
func (tl timeline) rows(events []event.Event, editing *interval.Interval) []Row {
	first, last := tl.dayStart, tl.dayEnd
	for _, e := range events {
		first = min(first, tl.minuteOf(e.Start))
		last = max(last, tl.minuteOf(e.End))
	}
	if editing != nil {
		first = min(first, tl.minuteOf(editing.Start))
		last = max(last, tl.minuteOf(editing.End))
	}
	first -= first % tl.minutesPerRow
	if rem := last % tl.minutesPerRow; rem != 0 {
		last += tl.minutesPerRow - rem
	}

	midnight := tl.day.Date(tl.loc)
	rows := make([]Row, 0, (last-first)/tl.minutesPerRow)
	prev := -1
	for m := first; m < last; m += tl.minutesPerRow {
		start := midnight.Add(time.Duration(m) * time.Minute)
		slot := interval.New(start, start.Add(time.Duration(tl.minutesPerRow)*time.Minute))

		row := Row{Start: start, Event: -1}
		for i, e := range events {
			if interval.Overlaps(slot, e.Interval) {
				row.Event = i
				break
			}
		}
		row.First = row.Event >= 0 && row.Event != prev
		row.Editing = editing != nil && interval.Overlaps(slot, *editing)
		prev = row.Event
		rows = append(rows, row)
	}
	return rows
}

// minuteOf returns the minutes from the day's midnight to t, clamped to
// the day.
func (tl timeline) minuteOf(t time.Time) int {
	m := int(t.Sub(tl.day.Date(tl.loc)) / time.Minute)
	return min(max(m, 0), MinutesPerDay)
}

// rowOf returns the index of the row containing t, or -1.
func rowOf(rows []Row, t time.Time, minutesPerRow int) int {
	for i, r := range rows {
		if !t.Before(r.Start) && t.Before(r.Start.Add(time.Duration(minutesPerRow)*time.Minute)) {
			return i
		}
	}
	return -1
}

// timedEvents splits the all-day events off and returns both, keeping order.
func timedEvents(events []event.Event) (timed, allDay []event.Event) {
	for _, e := range events {
		if e.AllDay || interval.IsWholeDay(e.Interval) {
			allDay = append(allDay, e)
			continue
		}
		timed = append(timed, e)
	}
	return timed, allDay
}
