package period

import (
	"testing"
	"time"
)

func TestKeyFor(t *testing.T) {
	ts := time.Date(2025, 1, 31, 1, 0, 0, 0, time.UTC)

	if got := KeyFor(GranularityDay, ts); got != (Day{2025, time.January, 31}) {
		t.Errorf("day key = %v", got)
	}
	if got := KeyFor(GranularityWeek, ts); got != (Week{2025, 5}) {
		t.Errorf("week key = %v", got)
	}
	if got := KeyFor(GranularityMonth, ts); got != (Month{2025, time.January}) {
		t.Errorf("month key = %v", got)
	}
}

func TestWeekOf_ISOYear(t *testing.T) {
	// 2024-12-30 belongs to ISO week 1 of 2025.
	got := WeekOf(time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC))
	if got != (Week{2025, 1}) {
		t.Errorf("WeekOf = %v, want 2025-W01", got)
	}
}

func TestKeysAreComparable(t *testing.T) {
	m := map[Key]int{}
	m[Day{2025, time.March, 1}] = 1
	m[Week{2025, 9}] = 2
	m[Month{2025, time.March}] = 3
	m[Day{2025, time.March, 1}] = 4

	if len(m) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(m))
	}
	if m[Day{2025, time.March, 1}] != 4 {
		t.Error("day key should be overwritten in place")
	}
}

func TestIntervals(t *testing.T) {
	loc := time.FixedZone("CET", 60*60)

	day := Day{2025, time.March, 30}.Interval(loc)
	if !day.Start.Equal(time.Date(2025, 3, 30, 0, 0, 0, 0, loc)) || !day.End.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, loc)) {
		t.Errorf("day interval = %v", day)
	}

	week := Week{2025, 5}.Interval(loc)
	if !week.Start.Equal(time.Date(2025, 1, 27, 0, 0, 0, 0, loc)) || !week.End.Equal(time.Date(2025, 2, 3, 0, 0, 0, 0, loc)) {
		t.Errorf("week interval = %v", week)
	}

	month := Month{2024, time.February}.Interval(loc)
	if !month.End.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("month interval = %v", month)
	}
}

func TestWeekDaysAndMonths(t *testing.T) {
	w := Week{2025, 5}
	days := w.Days()
	if len(days) != 7 || days[0] != (Day{2025, time.January, 27}) || days[6] != (Day{2025, time.February, 2}) {
		t.Errorf("Days = %v", days)
	}
	months := w.Months()
	if len(months) != 2 || months[0] != (Month{2025, time.January}) || months[1] != (Month{2025, time.February}) {
		t.Errorf("Months = %v", months)
	}
	if got := (Week{2025, 3}).Months(); len(got) != 1 {
		t.Errorf("mid-month week should touch one month, got %v", got)
	}
}

func TestMonthWeeksAndDays(t *testing.T) {
	m := Month{2025, time.February}
	if got := len(m.Days()); got != 28 {
		t.Errorf("February 2025 has %d days, want 28", got)
	}

	weeks := m.Weeks()
	// Feb 1 2025 is a Saturday (W05), Feb 28 a Friday (W09).
	want := []Week{{2025, 5}, {2025, 6}, {2025, 7}, {2025, 8}, {2025, 9}}
	if len(weeks) != len(want) {
		t.Fatalf("Weeks = %v, want %v", weeks, want)
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Errorf("week %d = %v, want %v", i, weeks[i], want[i])
		}
	}
}

func TestStrings(t *testing.T) {
	if got := (Day{2025, time.January, 5}).String(); got != "2025-01-05" {
		t.Errorf("Day.String = %q", got)
	}
	if got := (Week{2025, 5}).String(); got != "2025-W05" {
		t.Errorf("Week.String = %q", got)
	}
	if got := (Month{2025, time.January}).String(); got != "2025-01" {
		t.Errorf("Month.String = %q", got)
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != (Day{2025, time.February, 1}) {
		t.Errorf("ParseDay = %v", d)
	}
	if _, err := ParseDay("Feb 1"); err == nil {
		t.Error("expected error for bad date")
	}
}
