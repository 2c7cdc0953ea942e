// Package interval provides arithmetic on calendar time intervals.
//
// All functions are total: they never validate or reject their input.
// Shifting an endpoint past the other one produces an interval with
// End before Start, and it is up to the constraint layer to correct it.
package interval

import (
	"time"

	"github.com/javiermolinar/almanac/internal/dateutil"
)

// Interval is a span of time. Period and boundary comparisons treat it as
// half-open [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
	// AllDay marks an event that covers whole days. Start and End still
	// carry real bounds (midnight to midnight).
	AllDay bool
}

// New returns the interval [start, end).
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// WholeDay returns the all-day interval of the day containing t.
func WholeDay(t time.Time) Interval {
	start := dateutil.TruncateToDay(t)
	return Interval{Start: start, End: start.AddDate(0, 0, 1), AllDay: true}
}

// ShiftStart moves the start by the given number of minutes.
func ShiftStart(iv Interval, minutes int) Interval {
	iv.Start = iv.Start.Add(time.Duration(minutes) * time.Minute)
	return iv
}

// ShiftEnd moves the end by the given number of minutes.
func ShiftEnd(iv Interval, minutes int) Interval {
	iv.End = iv.End.Add(time.Duration(minutes) * time.Minute)
	return iv
}

// ClampToPeriod clamps both endpoints into the closed range of period.
// Clamping twice yields the same interval as clamping once.
func ClampToPeriod(iv, period Interval) Interval {
	iv.Start = Clamp(iv.Start, period)
	iv.End = Clamp(iv.End, period)
	return iv
}

// Clamp returns t limited to [period.Start, period.End].
func Clamp(t time.Time, period Interval) time.Time {
	if t.Before(period.Start) {
		return period.Start
	}
	if t.After(period.End) {
		return period.End
	}
	return t
}

// Contains reports whether t lies within the closed range of period.
func Contains(period Interval, t time.Time) bool {
	return !t.Before(period.Start) && !t.After(period.End)
}

// Overlaps reports whether a and b share any instant.
// Two intervals overlap if: a.Start < b.End AND b.Start < a.End, so
// intervals that only touch do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// IsWholeDay reports whether iv covers exactly one calendar day, either
// because it is flagged AllDay or because it runs midnight to midnight.
func IsWholeDay(iv Interval) bool {
	if iv.AllDay {
		return true
	}
	start := dateutil.TruncateToDay(iv.Start)
	return iv.Start.Equal(start) && iv.End.Equal(start.AddDate(0, 0, 1))
}

// Minutes returns the length of iv in whole minutes. Negative when End is
// before Start.
func Minutes(iv Interval) int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// Valid reports whether Start is not after End.
func (iv Interval) Valid() bool {
	return !iv.End.Before(iv.Start)
}

// Equal reports whether both endpoints and the all-day flag match.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End) && iv.AllDay == other.AllDay
}

// String formats the interval for logs and CLI output.
func (iv Interval) String() string {
	if IsWholeDay(iv) {
		return iv.Start.Format("2006-01-02") + " (all day)"
	}
	if dateutil.SameDay(iv.Start, iv.End) {
		return iv.Start.Format("2006-01-02 15:04") + "-" + iv.End.Format("15:04")
	}
	return iv.Start.Format("2006-01-02 15:04") + " - " + iv.End.Format("2006-01-02 15:04")
}
