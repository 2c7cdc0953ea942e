// Package summary totals the events of a period day by day: how much of
// each day is booked and where the longest free stretch of the working
// hours is.
package summary

import (
	"slices"
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Options configures the working hours free time is measured in.
type Options struct {
	// DayStart and DayEnd are minutes from midnight.
	DayStart int
	DayEnd   int
}

// Day holds the totals of one day.
type Day struct {
	Date   time.Time // midnight
	Events int
	AllDay int
	// BusyMinutes is the booked part of the day, overlaps counted once.
	BusyMinutes int
	// LongestFree is the longest gap within the working hours. It is
	// empty when the working hours are fully booked.
	LongestFree interval.Interval
}

// Summary holds the totals of a period.
type Summary struct {
	Days []Day
	// Events counts each event once even when it spans several days.
	Events      int
	BusyMinutes int
}

// Summarize totals events over days. Days are midnights in the location
// the events should be read in.
func Summarize(events []event.Event, days []time.Time, opts Options) Summary {
	var s Summary
	seen := make(map[string]bool)

	for _, date := range days {
		dayIv := interval.New(date, date.AddDate(0, 0, 1))
		d := Day{Date: date}

		var busy []interval.Interval
		for _, e := range events {
			if !interval.Overlaps(e.Interval, dayIv) {
				continue
			}
			d.Events++
			seen[e.ID] = true
			if interval.IsWholeDay(e.Interval) {
				d.AllDay++
				continue
			}
			busy = append(busy, interval.ClampToPeriod(e.Interval, dayIv))
		}

		busy = merge(busy)
		for _, iv := range busy {
			d.BusyMinutes += interval.Minutes(iv)
		}
		d.LongestFree = longestGap(busy, workingHours(date, opts))

		s.BusyMinutes += d.BusyMinutes
		s.Days = append(s.Days, d)
	}

	s.Events = len(seen)
	return s
}

// Busiest returns the day with the most booked minutes. It returns false
// when nothing is booked.
func (s Summary) Busiest() (Day, bool) {
	var best Day
	for _, d := range s.Days {
		if d.BusyMinutes > best.BusyMinutes {
			best = d
		}
	}
	return best, best.BusyMinutes > 0
}

func workingHours(date time.Time, opts Options) interval.Interval {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, opts.DayStart, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), 0, opts.DayEnd, 0, 0, date.Location())
	return interval.New(start, end)
}

// merge sorts ivs and joins the ones that overlap or touch.
func merge(ivs []interval.Interval) []interval.Interval {
	if len(ivs) == 0 {
		return nil
	}
	slices.SortFunc(ivs, func(a, b interval.Interval) int {
		return a.Start.Compare(b.Start)
	})

	out := []interval.Interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.Start.After(last.End) {
			out = append(out, iv)
			continue
		}
		if iv.End.After(last.End) {
			last.End = iv.End
		}
	}
	return out
}

// longestGap returns the longest part of window not covered by busy,
// which must be merged. The earliest gap wins a tie.
func longestGap(busy []interval.Interval, window interval.Interval) interval.Interval {
	var best interval.Interval
	cursor := window.Start
	consider := func(end time.Time) {
		if end.After(window.End) {
			end = window.End
		}
		if end.Sub(cursor) > best.End.Sub(best.Start) {
			best = interval.New(cursor, end)
		}
	}

	for _, iv := range busy {
		if !iv.End.After(window.Start) {
			continue
		}
		if !iv.Start.Before(window.End) {
			break
		}
		if iv.Start.After(cursor) {
			consider(iv.Start)
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(window.End) {
		consider(window.End)
	}
	return best
}
