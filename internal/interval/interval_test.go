package interval

import (
	"math/rand/v2"
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 15, hour, minute, 0, 0, time.UTC)
}

func TestShift(t *testing.T) {
	iv := New(at(9, 0), at(10, 0))

	if got := ShiftStart(iv, 30); !got.Start.Equal(at(9, 30)) || !got.End.Equal(at(10, 0)) {
		t.Errorf("ShiftStart(+30) = %v", got)
	}
	if got := ShiftStart(iv, -90); !got.Start.Equal(at(7, 30)) {
		t.Errorf("ShiftStart(-90) = %v", got)
	}
	if got := ShiftEnd(iv, 15); !got.End.Equal(at(10, 15)) || !got.Start.Equal(at(9, 0)) {
		t.Errorf("ShiftEnd(+15) = %v", got)
	}

	// Shifting past the other endpoint is allowed.
	got := ShiftStart(iv, 120)
	if got.Valid() {
		t.Errorf("expected inverted interval, got %v", got)
	}
	if Minutes(got) != -60 {
		t.Errorf("Minutes = %d, want -60", Minutes(got))
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", New(at(9, 0), at(10, 0)), New(at(11, 0), at(12, 0)), false},
		{"touching", New(at(9, 0), at(10, 0)), New(at(10, 0), at(11, 0)), false},
		{"partial", New(at(9, 0), at(10, 30)), New(at(10, 0), at(11, 0)), true},
		{"contained", New(at(9, 0), at(12, 0)), New(at(10, 0), at(11, 0)), true},
		{"identical", New(at(9, 0), at(10, 0)), New(at(9, 0), at(10, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampToPeriod(t *testing.T) {
	period := New(at(8, 0), at(18, 0))

	tests := []struct {
		name string
		in   Interval
		want Interval
	}{
		{"inside", New(at(9, 0), at(10, 0)), New(at(9, 0), at(10, 0))},
		{"start before", New(at(6, 0), at(10, 0)), New(at(8, 0), at(10, 0))},
		{"end after", New(at(17, 0), at(20, 0)), New(at(17, 0), at(18, 0))},
		{"entirely before", New(at(5, 0), at(6, 0)), New(at(8, 0), at(8, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampToPeriod(tt.in, period); !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampToPeriod_Idempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	base := at(0, 0)
	minute := func() time.Time { return base.Add(time.Duration(r.IntN(3*24*60)) * time.Minute) }

	for i := 0; i < 1000; i++ {
		iv := New(minute(), minute())
		p := New(minute(), minute())
		if p.End.Before(p.Start) {
			p.Start, p.End = p.End, p.Start
		}
		once := ClampToPeriod(iv, p)
		twice := ClampToPeriod(once, p)
		if !once.Equal(twice) {
			t.Fatalf("clamp not idempotent for %v in %v: %v then %v", iv, p, once, twice)
		}
	}
}

func TestIsWholeDay(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	if !IsWholeDay(WholeDay(at(13, 0))) {
		t.Error("WholeDay should be whole day")
	}
	if !IsWholeDay(New(day, day.AddDate(0, 0, 1))) {
		t.Error("midnight to midnight should be whole day")
	}
	if IsWholeDay(New(day, day.Add(23*time.Hour))) {
		t.Error("23 hour interval should not be whole day")
	}
	if IsWholeDay(New(day, day)) {
		t.Error("zero-length interval should not be whole day")
	}
}

func TestContains(t *testing.T) {
	p := New(at(8, 0), at(18, 0))
	if !Contains(p, at(8, 0)) || !Contains(p, at(18, 0)) {
		t.Error("bounds should be contained")
	}
	if Contains(p, at(7, 59)) || Contains(p, at(18, 1)) {
		t.Error("outside instants should not be contained")
	}
}
