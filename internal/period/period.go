// Package period identifies the day, week and month spans events are
// queried and cached by.
package period

import (
	"fmt"
	"time"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Granularity is the size of a period.
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityWeek
	GranularityMonth
)

func (g Granularity) String() string {
	switch g {
	case GranularityDay:
		return "day"
	case GranularityWeek:
		return "week"
	case GranularityMonth:
		return "month"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity parses "day", "week" or "month".
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "day":
		return GranularityDay, nil
	case "week":
		return GranularityWeek, nil
	case "month":
		return GranularityMonth, nil
	default:
		return 0, fmt.Errorf("unknown granularity %q", s)
	}
}

// Key identifies one period. It is implemented only by Day, Week and Month,
// and values are comparable so they can be used as map keys.
type Key interface {
	Granularity() Granularity
	// Interval returns the half-open span of the period in loc.
	Interval(loc *time.Location) interval.Interval
	String() string
	isKey()
}

// Day is a calendar date.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Week is an ISO week of an ISO year.
type Week struct {
	Year int
	Week int
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func (Day) isKey()   {}
func (Week) isKey()  {}
func (Month) isKey() {}

func (Day) Granularity() Granularity   { return GranularityDay }
func (Week) Granularity() Granularity  { return GranularityWeek }
func (Month) Granularity() Granularity { return GranularityMonth }

// DayOf returns the day containing t, in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// WeekOf returns the ISO week containing t, in t's location.
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	y, m, _ := t.Date()
	return Month{Year: y, Month: m}
}

// KeyFor returns the key of granularity g containing t.
func KeyFor(g Granularity, t time.Time) Key {
	switch g {
	case GranularityWeek:
		return WeekOf(t)
	case GranularityMonth:
		return MonthOf(t)
	default:
		return DayOf(t)
	}
}

// ParseDay parses an ISO date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dateutil.DateLayout, s)
	if err != nil {
		return Day{}, dateutil.ErrInvalidDateFormat
	}
	return DayOf(t), nil
}

// Date returns midnight of d in loc.
func (d Day) Date(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) Interval(loc *time.Location) interval.Interval {
	start := d.Date(loc)
	return interval.New(start, start.AddDate(0, 0, 1))
}

// String returns the ISO date, yyyy-MM-dd.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Week returns the ISO week containing d.
func (d Day) Week() Week {
	return WeekOf(d.Date(time.UTC))
}

// MonthKey returns the month containing d.
func (d Day) MonthKey() Month {
	return Month{Year: d.Year, Month: d.Month}
}

// Monday returns midnight of the first day of w in loc.
func (w Week) Monday(loc *time.Location) time.Time {
	return dateutil.ISOWeekStart(w.Year, w.Week, loc)
}

func (w Week) Interval(loc *time.Location) interval.Interval {
	start := w.Monday(loc)
	return interval.New(start, start.AddDate(0, 0, 7))
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Days returns the seven days of w, Monday first.
func (w Week) Days() []Day {
	monday := w.Monday(time.UTC)
	days := make([]Day, 7)
	for i := range days {
		days[i] = DayOf(monday.AddDate(0, 0, i))
	}
	return days
}

// Months returns the one or two months w touches.
func (w Week) Months() []Month {
	days := w.Days()
	first, last := days[0].MonthKey(), days[6].MonthKey()
	if first == last {
		return []Month{first}
	}
	return []Month{first, last}
}

// First returns midnight of the first day of m in loc.
func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

func (m Month) Interval(loc *time.Location) interval.Interval {
	start := m.First(loc)
	return interval.New(start, start.AddDate(0, 1, 0))
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns every day of m.
func (m Month) Days() []Day {
	first, last := dateutil.MonthRange(m.First(time.UTC))
	var days []Day
	for _, d := range dateutil.EachDay(first, last) {
		days = append(days, DayOf(d))
	}
	return days
}

// Weeks returns the ISO weeks that touch m, in order.
func (m Month) Weeks() []Week {
	first, last := dateutil.MonthRange(m.First(time.UTC))
	var weeks []Week
	for d := first; !d.After(last); d = d.AddDate(0, 0, 7) {
		weeks = append(weeks, WeekOf(d))
	}
	if lastWeek := WeekOf(last); weeks[len(weeks)-1] != lastWeek {
		weeks = append(weeks, lastWeek)
	}
	return weeks
}

// Covering returns the day, week and month keys containing t, in t's
// location.
func Covering(t time.Time) []Key {
	return []Key{DayOf(t), WeekOf(t), MonthOf(t)}
}
