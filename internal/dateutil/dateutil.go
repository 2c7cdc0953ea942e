// Package dateutil provides date parsing and calendar range utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
)

// DateLayout is the ISO date layout used on the wire and on the CLI.
const DateLayout = "2006-01-02"

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDate parses a date string in YYYY-MM-DD format as midnight in loc.
// If the string is empty, returns today's date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now().In(loc)), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseClock combines a day with an "HH:MM" wall-clock time in the day's
// location. "24:00" is accepted and means the following midnight.
func ParseClock(day time.Time, hhmm string) (time.Time, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return time.Time{}, ErrInvalidTimeFormat
	}
	day = TruncateToDay(day)
	if hhmm == "24:00" {
		return day.AddDate(0, 0, 1), nil
	}
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday", "next-week", "last-week"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday"
//
// All inputs are case-insensitive. Absolute dates are parsed in the
// location of relativeTo. Returns ErrInvalidDateFormat for unrecognized input.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "last-week":
		return today.AddDate(0, 0, -7), nil
	}

	if strings.HasPrefix(input, "next-") {
		weekdayName := strings.TrimPrefix(input, "next-")
		if targetDay, ok := weekdayMap[weekdayName]; ok {
			return nextWeekday(today, targetDay), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if targetDay, ok := weekdayMap[input]; ok {
		return nextWeekday(today, targetDay), nil
	}

	result, err := time.ParseInLocation(DateLayout, input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	current := today.Weekday()
	daysUntil := int(target) - int(current)
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last = first.AddDate(0, 1, -1)
	return first, last
}

// ISOWeekStart returns the Monday that starts the given ISO week in loc.
func ISOWeekStart(year, week int, loc *time.Location) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	monday, _ := WeekRange(jan4)
	return monday.AddDate(0, 0, (week-1)*7)
}

// ISOWeeksInYear returns 52 or 53.
func ISOWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// EachDay returns every midnight from the day of from through the day of
// to, inclusive.
func EachDay(from, to time.Time) []time.Time {
	from = TruncateToDay(from)
	to = TruncateToDay(to)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
