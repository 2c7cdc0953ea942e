package event

import (
	"slices"

	"github.com/javiermolinar/almanac/internal/interval"
)

// Predicate selects events.
type Predicate func(Event) bool

// All matches every event.
func All(Event) bool { return true }

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(e Event) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(e Event) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(e Event) bool { return !p(e) }
}

// HasID matches the event with the given id.
func HasID(id string) Predicate {
	return func(e Event) bool { return e.ID == id }
}

// ExcludeID matches every event except the one with the given id. It is
// used to keep an event that is being edited out of its own overlap checks.
func ExcludeID(id string) Predicate {
	return Not(HasID(id))
}

// OverlapsInterval matches events that overlap iv.
func OverlapsInterval(iv interval.Interval) Predicate {
	return func(e Event) bool { return interval.Overlaps(e.Interval, iv) }
}

// ListedIn matches the events a store lists for the period iv: those
// overlapping it, and zero-length ones starting inside it.
func ListedIn(iv interval.Interval) Predicate {
	return func(e Event) bool {
		if e.Start.Equal(e.End) {
			return !e.Start.Before(iv.Start) && e.Start.Before(iv.End)
		}
		return interval.Overlaps(e.Interval, iv)
	}
}

// EndsBy matches events ending at or before iv.Start.
func EndsBy(iv interval.Interval) Predicate {
	return func(e Event) bool { return !e.End.After(iv.Start) }
}

// StartsFrom matches events starting at or after iv.End.
func StartsFrom(iv interval.Interval) Predicate {
	return func(e Event) bool { return !e.Start.Before(iv.End) }
}

// Filter returns the events matching p, preserving order.
func Filter(events []Event, p Predicate) []Event {
	if p == nil {
		p = All
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if p(e) {
			out = append(out, e)
		}
	}
	return out
}

// UniqueByID drops later duplicates of the same ID, preserving order.
func UniqueByID(events []Event) []Event {
	seen := make(map[string]bool, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// SortByStart sorts events by start, then end, then ID.
func SortByStart(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if c := a.End.Compare(b.End); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ClosestPrevious returns the event ending at or before iv.Start with the
// latest end, or nil.
func ClosestPrevious(events []Event, iv interval.Interval) *Event {
	var best *Event
	for i := range events {
		e := events[i]
		if e.End.After(iv.Start) {
			continue
		}
		if best == nil || e.End.After(best.End) {
			best = &e
		}
	}
	return best
}

// ClosestNext returns the event starting at or after iv.End with the
// earliest start, or nil.
func ClosestNext(events []Event, iv interval.Interval) *Event {
	var best *Event
	for i := range events {
		e := events[i]
		if e.Start.Before(iv.End) {
			continue
		}
		if best == nil || e.Start.Before(best.Start) {
			best = &e
		}
	}
	return best
}

// LatestOverlap returns the event overlapping iv whose end is latest
// without passing iv.End, or nil.
func LatestOverlap(events []Event, iv interval.Interval) *Event {
	var best *Event
	for i := range events {
		e := events[i]
		if !interval.Overlaps(e.Interval, iv) || e.End.After(iv.End) {
			continue
		}
		if best == nil || e.End.After(best.End) {
			best = &e
		}
	}
	return best
}

// EarliestOverlap returns the event overlapping iv whose start is earliest
// without preceding iv.Start, or nil.
func EarliestOverlap(events []Event, iv interval.Interval) *Event {
	var best *Event
	for i := range events {
		e := events[i]
		if !interval.Overlaps(e.Interval, iv) || e.Start.Before(iv.Start) {
			continue
		}
		if best == nil || e.Start.Before(best.Start) {
			best = &e
		}
	}
	return best
}
