package integration

import (
	"context"
	"testing"
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

func loadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s not available: %v", name, err)
	}
	return loc
}

func TestPeriodsFollowTheClientTimezone(t *testing.T) {
	tokyo := loadLocation(t, "Asia/Tokyo")
	repo := openRepo(t)
	url := serve(t, repo)
	utc := newStack(t, repo, url, time.UTC)
	jst := newStack(t, repo, url, tokyo)

	// 20:00 UTC on Monday is 05:00 Tuesday in Tokyo.
	utc.create(t, "Sync", at(time.UTC, 3, 20, 0), at(time.UTC, 3, 21, 0))

	monday := period.Day{Year: 2025, Month: time.February, Day: 3}
	tuesday := period.Day{Year: 2025, Month: time.February, Day: 4}

	if got := utc.confirmed(t, monday); len(got.Events) != 1 {
		t.Errorf("UTC Monday = %v", titles(got.Events))
	}
	if got := jst.confirmed(t, monday); len(got.Events) != 0 {
		t.Errorf("Tokyo Monday = %v", titles(got.Events))
	}
	got := jst.confirmed(t, tuesday)
	if len(got.Events) != 1 {
		t.Fatalf("Tokyo Tuesday = %v", titles(got.Events))
	}
	if start := got.Events[0].Start; start.Location() != tokyo || start.Hour() != 5 {
		t.Errorf("expected 05:00 in Tokyo, got %v", start)
	}
}

func TestWholeDayEventsStayOnTheirDay(t *testing.T) {
	tokyo := loadLocation(t, "Asia/Tokyo")
	repo := openRepo(t)
	url := serve(t, repo)
	jst := newStack(t, repo, url, tokyo)

	day := time.Date(2025, time.February, 11, 0, 0, 0, 0, tokyo)
	d, err := event.NewDraft("Holiday", "", interval.WholeDay(day))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jst.svc.Create(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	got := jst.confirmed(t, period.DayOf(day))
	if len(got.Events) != 1 {
		t.Fatalf("expected the holiday, got %v", titles(got.Events))
	}
	if !interval.IsWholeDay(got.Events[0].Interval) {
		t.Errorf("expected a whole day in Tokyo, got %v", got.Events[0].Interval)
	}
	if next := jst.confirmed(t, period.DayOf(day.AddDate(0, 0, 1))); len(next.Events) != 0 {
		t.Errorf("holiday leaked into the next day: %v", titles(next.Events))
	}
}
