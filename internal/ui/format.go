package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
	"github.com/javiermolinar/almanac/internal/summary"
	"github.com/javiermolinar/almanac/internal/tui/view"
)

// shortIDLen is how much of an event ID listings show.
const shortIDLen = 8

// rowOverhead is the width of a row without its title:
// "  HH:MM-HH:MM  " + "  1h 30m  " + short id.
const rowOverhead = 15 + 10 + shortIDLen

// spanLabel formats the time of e in loc.
func spanLabel(e event.Event, loc *time.Location) string {
	if interval.IsWholeDay(e.Interval) {
		return "all day    "
	}
	return view.FormatSpan(e.Start.In(loc), e.End.In(loc))
}

// titleWidth returns how wide titles may be on this terminal.
func titleWidth() int {
	return max(termWidth()-rowOverhead, 20)
}

// truncate shortens s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// printEventRow prints one event on a single line.
func printEventRow(w io.Writer, e event.Event, loc *time.Location, width int) {
	span := formatEvent(spanLabel(e, loc))
	if interval.IsWholeDay(e.Interval) {
		span = formatAllDay(spanLabel(e, loc))
	}
	_, _ = fmt.Fprintf(w, "  %s  %-*s  %s  %s\n",
		span,
		width, truncate(e.Title, width),
		formatMuted(fmt.Sprintf("%-7s", view.FormatDuration(e.Duration()))),
		formatMuted(shortID(e.ID)),
	)
}

// printDays prints events grouped under a header per day, in order. An
// event spanning midnight is listed on each day it touches.
func printDays(w io.Writer, events []event.Event, days []time.Time, loc *time.Location) int {
	width := titleWidth()
	printed := 0
	for _, day := range days {
		next := day.AddDate(0, 0, 1)
		var onDay []event.Event
		for _, e := range events {
			if interval.Overlaps(e.Interval, interval.New(day, next)) {
				onDay = append(onDay, e)
			}
		}
		if len(onDay) == 0 {
			continue
		}
		if printed > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "=== %s ===\n", formatHeader(day.Format("Monday, January 2, 2006")))
		for _, e := range onDay {
			printEventRow(w, e, loc, width)
		}
		printed++
	}
	return printed
}

// printEventDetail prints every field of e.
func printEventDetail(w io.Writer, e event.Event, loc *time.Location) {
	start := e.Start.In(loc)
	_, _ = fmt.Fprintf(w, "%s\n", formatHeader(e.Title))
	_, _ = fmt.Fprintf(w, "  id:          %s\n", e.ID)
	_, _ = fmt.Fprintf(w, "  date:        %s\n", start.Format(dateutil.DateLayout))
	_, _ = fmt.Fprintf(w, "  time:        %s\n", spanLabel(e, loc))
	_, _ = fmt.Fprintf(w, "  duration:    %s\n", view.FormatDuration(e.Duration()))
	if e.Description != "" {
		_, _ = fmt.Fprintf(w, "  description: %s\n", e.Description)
	}
	if !e.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "  created:     %s\n", e.CreatedAt.In(loc).Format(time.RFC3339))
	}
}

// printSummary prints the totals line under a listing. A day shows its
// longest free stretch, longer periods their busiest day.
func printSummary(w io.Writer, g period.Granularity, s summary.Summary) {
	if len(s.Days) == 0 {
		return
	}
	noun := "events"
	if s.Events == 1 {
		noun = "event"
	}
	line := fmt.Sprintf("%d %s, %s booked", s.Events, noun, view.FormatDuration(s.BusyMinutes))

	if g == period.GranularityDay {
		free := s.Days[0].LongestFree
		if interval.Minutes(free) > 0 {
			line += fmt.Sprintf(", longest free %s", view.FormatSpan(free.Start, free.End))
		} else {
			line += ", no free time"
		}
	} else if busiest, ok := s.Busiest(); ok {
		line += fmt.Sprintf(", busiest %s (%s)", busiest.Date.Format("Monday 2"), view.FormatDuration(busiest.BusyMinutes))
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", formatMuted(line))
}
