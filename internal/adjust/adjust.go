// Package adjust moves the endpoints of an event interval while keeping it
// valid against the day it lives in and the events around it.
//
// Every operation is a pure state transition: it takes the current State
// and returns the next one together with a Change describing what
// happened. Nothing here returns an error; any input is corrected into a
// valid interval.
package adjust

import (
	"fmt"
	"time"

	"github.com/javiermolinar/almanac/internal/constraint"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Op names an adjuster operation.
type Op int

const (
	OpIncStart Op = iota
	OpDecStart
	OpIncEnd
	OpDecEnd
	OpUpdateStart
	OpUpdateEnd
)

func (o Op) String() string {
	switch o {
	case OpIncStart:
		return "inc-start"
	case OpDecStart:
		return "dec-start"
	case OpIncEnd:
		return "inc-end"
	case OpDecEnd:
		return "dec-end"
	case OpUpdateStart:
		return "update-start"
	case OpUpdateEnd:
		return "update-end"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// movesStart reports whether o changes the start of the interval.
func (o Op) movesStart() bool {
	return o == OpIncStart || o == OpDecStart || o == OpUpdateStart
}

// State is the interval being edited plus the resize gesture flags a
// front end keeps while a handle is held.
type State struct {
	interval.Interval
	StartResizing bool
	EndResizing   bool
}

// Change describes one transition.
type Change struct {
	Op        Op
	Before    interval.Interval
	After     interval.Interval
	Corrected bool
	// By names the constraint that corrected the interval, if any.
	By string
}

// Moved reports whether the interval changed.
func (c Change) Moved() bool {
	return !c.Before.Equal(c.After)
}

func (c Change) String() string {
	if c.Corrected {
		return fmt.Sprintf("%s %v -> %v (corrected by %s)", c.Op, c.Before, c.After, c.By)
	}
	return fmt.Sprintf("%s %v -> %v", c.Op, c.Before, c.After)
}

// Adjuster holds the context an interval is adjusted against.
type Adjuster struct {
	// Period bounds drag operations, usually the day being edited.
	Period interval.Interval
	// MinSpan is the shortest interval allowed, in minutes.
	MinSpan int
	// Preceding are events the start must not grow into.
	Preceding []event.Event
	// Following are events the end must not grow into.
	Following []event.Event
}

// IncStart moves the start later by minutes, shrinking the interval from
// the top.
func (a Adjuster) IncStart(s State, minutes int) (State, Change) {
	return a.apply(s, OpIncStart, interval.ShiftStart(s.Interval, minutes), constraint.Chain{
		constraint.MinimumSpan(a.MinSpan, false),
		constraint.Containment(a.Period, false),
	})
}

// DecStart moves the start earlier by minutes, growing the interval
// upward.
func (a Adjuster) DecStart(s State, minutes int) (State, Change) {
	return a.apply(s, OpDecStart, interval.ShiftStart(s.Interval, -minutes), constraint.Chain{
		constraint.Containment(a.Period, false),
		constraint.NoOverlap(a.Preceding, false),
	})
}

// IncEnd moves the end later by minutes, growing the interval downward.
func (a Adjuster) IncEnd(s State, minutes int) (State, Change) {
	return a.apply(s, OpIncEnd, interval.ShiftEnd(s.Interval, minutes), constraint.Chain{
		constraint.Containment(a.Period, true),
		constraint.NoOverlap(a.Following, true),
	})
}

// DecEnd moves the end earlier by minutes, shrinking the interval from the
// bottom.
func (a Adjuster) DecEnd(s State, minutes int) (State, Change) {
	return a.apply(s, OpDecEnd, interval.ShiftEnd(s.Interval, -minutes), constraint.Chain{
		constraint.MinimumSpan(a.MinSpan, true),
		constraint.Containment(a.Period, true),
	})
}

// UpdateStart replaces the start with fn(start). The period is not
// enforced: a picker may move the event to another day.
func (a Adjuster) UpdateStart(s State, fn func(time.Time) time.Time) (State, Change) {
	next := s.Interval
	next.Start = fn(next.Start)
	return a.apply(s, OpUpdateStart, next, constraint.Chain{
		constraint.MinimumSpan(a.MinSpan, false),
		constraint.NoOverlap(a.neighbors(), false),
	})
}

// UpdateEnd replaces the end with fn(end).
func (a Adjuster) UpdateEnd(s State, fn func(time.Time) time.Time) (State, Change) {
	next := s.Interval
	next.End = fn(next.End)
	return a.apply(s, OpUpdateEnd, next, constraint.Chain{
		constraint.MinimumSpan(a.MinSpan, true),
		constraint.NoOverlap(a.neighbors(), true),
	})
}

func (a Adjuster) neighbors() []event.Event {
	all := make([]event.Event, 0, len(a.Preceding)+len(a.Following))
	all = append(all, a.Preceding...)
	all = append(all, a.Following...)
	return event.UniqueByID(all)
}

func (a Adjuster) apply(s State, op Op, candidate interval.Interval, chain constraint.Chain) (State, Change) {
	// A moved endpoint no longer describes a whole day.
	candidate.AllDay = false

	after, res := chain.Apply(candidate)
	change := Change{
		Op:        op,
		Before:    s.Interval,
		After:     after,
		Corrected: res.Corrected,
		By:        res.By,
	}

	next := s
	next.Interval = after
	if res.Corrected {
		if op.movesStart() {
			next.StartResizing = false
		} else {
			next.EndResizing = false
		}
	}
	return next, change
}
