// Package constraint keeps a user-adjusted interval valid.
//
// A Constraint pairs a validity check with a correction. Constraints are
// composed into ordered chains; applying a chain corrects at most one
// violation per call, so a correction that breaks a later constraint is
// caught on the next adjustment rather than layered in the same pass.
package constraint

import (
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Constraint validates and corrects an interval.
type Constraint interface {
	// Name identifies the constraint in change descriptors and logs.
	Name() string
	// Check reports whether iv satisfies the constraint.
	Check(iv interval.Interval) bool
	// Correct returns a valid interval. Only called when Check fails.
	Correct(iv interval.Interval) interval.Interval
}

// Constraint names.
const (
	NameMinimumSpan = "minimum-span"
	NameContainment = "containment"
	NameNoOverlap   = "no-overlap"
)

// MinimumSpan requires the interval to last at least the given number of
// minutes. When anchorEnd is false the start stays put and the end is
// pushed out; when true the end stays put and the start is pushed back.
func MinimumSpan(minutes int, anchorEnd bool) Constraint {
	return minimumSpan{span: time.Duration(minutes) * time.Minute, anchorEnd: anchorEnd}
}

type minimumSpan struct {
	span      time.Duration
	anchorEnd bool
}

func (c minimumSpan) Name() string { return NameMinimumSpan }

func (c minimumSpan) Check(iv interval.Interval) bool {
	return iv.End.Sub(iv.Start) >= c.span
}

func (c minimumSpan) Correct(iv interval.Interval) interval.Interval {
	if c.anchorEnd {
		iv.Start = iv.End.Add(-c.span)
	} else {
		iv.End = iv.Start.Add(c.span)
	}
	return iv
}

// Containment requires the free endpoint to stay within period. The free
// endpoint is the start when anchorEnd is false and the end when true.
func Containment(period interval.Interval, anchorEnd bool) Constraint {
	return containment{period: period, anchorEnd: anchorEnd}
}

type containment struct {
	period    interval.Interval
	anchorEnd bool
}

func (c containment) Name() string { return NameContainment }

func (c containment) Check(iv interval.Interval) bool {
	if c.anchorEnd {
		return interval.Contains(c.period, iv.End)
	}
	return interval.Contains(c.period, iv.Start)
}

func (c containment) Correct(iv interval.Interval) interval.Interval {
	if c.anchorEnd {
		iv.End = interval.Clamp(iv.End, c.period)
		if iv.End.Before(iv.Start) {
			iv.Start = iv.End
		}
	} else {
		iv.Start = interval.Clamp(iv.Start, c.period)
		if iv.End.Before(iv.Start) {
			iv.End = iv.Start
		}
	}
	return iv
}

// NoOverlap forbids the interval from overlapping any of events. The
// correction pulls the free endpoint back to the boundary of the closest
// event in the direction of growth: the latest-ending event when the
// start grows backward (anchorEnd false), the earliest-starting one when
// the end grows forward (anchorEnd true).
func NoOverlap(events []event.Event, anchorEnd bool) Constraint {
	return noOverlap{events: events, anchorEnd: anchorEnd}
}

type noOverlap struct {
	events    []event.Event
	anchorEnd bool
}

func (c noOverlap) Name() string { return NameNoOverlap }

func (c noOverlap) Check(iv interval.Interval) bool {
	for _, e := range c.events {
		if interval.Overlaps(e.Interval, iv) {
			return false
		}
	}
	return true
}

func (c noOverlap) Correct(iv interval.Interval) interval.Interval {
	if c.anchorEnd {
		if e := event.EarliestOverlap(c.events, iv); e != nil {
			iv.End = e.Start
		} else {
			// An event covers the anchored start; nothing is left to keep.
			iv.End = iv.Start
		}
		return iv
	}
	if e := event.LatestOverlap(c.events, iv); e != nil {
		iv.Start = e.End
	} else {
		iv.Start = iv.End
	}
	return iv
}

// Result describes the outcome of applying a chain.
type Result struct {
	Corrected bool
	// By names the constraint whose correction was applied.
	By string
}

// Chain is an ordered list of constraints.
type Chain []Constraint

// Apply evaluates the constraints in order. The first one that fails has
// its correction applied and evaluation stops there.
func (c Chain) Apply(iv interval.Interval) (interval.Interval, Result) {
	for _, con := range c {
		if !con.Check(iv) {
			return con.Correct(iv), Result{Corrected: true, By: con.Name()}
		}
	}
	return iv, Result{}
}
