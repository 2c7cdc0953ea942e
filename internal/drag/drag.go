// Package drag turns pointer movement into snapped minute steps and feeds
// them to an interval adjuster.
package drag

import (
	"math"

	"github.com/javiermolinar/almanac/internal/adjust"
	"github.com/javiermolinar/almanac/internal/interval"
)

// DefaultSnap is the resize step in minutes.
const DefaultSnap = 10

// DefaultPixelsPerMinute is the scale used when none is given.
const DefaultPixelsPerMinute = 1.0

// Translator converts pixel deltas into whole multiples of Snap minutes.
// Movement that does not add up to a full step is carried over to the
// next call, so slow drags still accumulate.
type Translator struct {
	PixelsPerMinute float64
	Snap            int

	remainder float64
}

// NewTranslator returns a translator for the given scale and snap.
func NewTranslator(pixelsPerMinute float64, snap int) *Translator {
	if snap <= 0 {
		snap = DefaultSnap
	}
	if pixelsPerMinute <= 0 || math.IsNaN(pixelsPerMinute) || math.IsInf(pixelsPerMinute, 0) {
		pixelsPerMinute = DefaultPixelsPerMinute
	}
	return &Translator{PixelsPerMinute: pixelsPerMinute, Snap: snap}
}

// Step adds a pixel delta and returns the snapped minutes to apply. The
// result is a multiple of Snap and may be zero or negative.
func (t *Translator) Step(pixels float64) int {
	minutes := pixels/t.PixelsPerMinute + t.remainder
	// math.Mod keeps the sign of minutes, so upward drags carry a
	// negative remainder.
	t.remainder = math.Mod(minutes, float64(t.Snap))
	return int(math.Round(minutes - t.remainder))
}

// Remainder returns the carried minutes not yet applied.
func (t *Translator) Remainder() float64 {
	return t.remainder
}

// Reset drops the carried remainder.
func (t *Translator) Reset() {
	t.remainder = 0
}

// Handle is one of the two resize handles of an interval.
type Handle int

const (
	Top Handle = iota
	Bottom
)

func (h Handle) String() string {
	if h == Top {
		return "top"
	}
	return "bottom"
}

// Resizer drives an adjuster from handle drags. Each handle has its own
// translator.
type Resizer struct {
	Adjuster adjust.Adjuster
	State    adjust.State

	top    *Translator
	bottom *Translator
}

// NewResizer returns a resizer for the interval held in s.
func NewResizer(a adjust.Adjuster, s adjust.State, pixelsPerMinute float64, snap int) *Resizer {
	return &Resizer{
		Adjuster: a,
		State:    s,
		top:      NewTranslator(pixelsPerMinute, snap),
		bottom:   NewTranslator(pixelsPerMinute, snap),
	}
}

// Resizable reports whether h can be grabbed: its endpoint must lie inside
// the adjuster's period.
func (r *Resizer) Resizable(h Handle) bool {
	if h == Top {
		return interval.Contains(r.Adjuster.Period, r.State.Start)
	}
	return interval.Contains(r.Adjuster.Period, r.State.End)
}

// Grab starts a resize gesture on h. It returns false when the handle is
// not resizable.
func (r *Resizer) Grab(h Handle) bool {
	if !r.Resizable(h) {
		return false
	}
	if h == Top {
		r.State.StartResizing = true
		r.top.Reset()
	} else {
		r.State.EndResizing = true
		r.bottom.Reset()
	}
	return true
}

// Release ends any resize gesture.
func (r *Resizer) Release() {
	r.State.StartResizing = false
	r.State.EndResizing = false
}

// Active reports whether a gesture on h is in progress.
func (r *Resizer) Active(h Handle) bool {
	if h == Top {
		return r.State.StartResizing
	}
	return r.State.EndResizing
}

// Drag moves h by a pixel delta. It returns the applied change and true,
// or false when the handle is not active or the movement did not add up
// to a full step.
func (r *Resizer) Drag(h Handle, pixels float64) (adjust.Change, bool) {
	if !r.Active(h) {
		return adjust.Change{}, false
	}

	var step int
	if h == Top {
		step = r.top.Step(pixels)
	} else {
		step = r.bottom.Step(pixels)
	}
	if step == 0 {
		return adjust.Change{}, false
	}

	var change adjust.Change
	switch {
	case h == Top && step < 0:
		r.State, change = r.Adjuster.DecStart(r.State, -step)
	case h == Top:
		r.State, change = r.Adjuster.IncStart(r.State, step)
	case step < 0:
		r.State, change = r.Adjuster.DecEnd(r.State, -step)
	default:
		r.State, change = r.Adjuster.IncEnd(r.State, step)
	}
	return change, true
}
