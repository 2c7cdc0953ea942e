package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSource serves a fixed event list and counts queries per key.
type fakeSource struct {
	mu     sync.Mutex
	events []event.Event
	calls  map[period.Key]int
	err    error
}

func newFakeSource(events ...event.Event) *fakeSource {
	return &fakeSource{events: events, calls: make(map[period.Key]int)}
}

func (s *fakeSource) ListByPeriod(_ context.Context, key period.Key) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	if s.err != nil {
		return nil, s.err
	}
	return event.Filter(s.events, event.ListedIn(key.Interval(time.UTC))), nil
}

func (s *fakeSource) Calls(key period.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *fakeSource) SetEvents(events ...event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

func (s *fakeSource) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func mkEvent(id string, start, end time.Time) event.Event {
	return event.Event{ID: id, Title: id, Interval: interval.New(start, end)}
}

func date(month time.Month, day, hour int) time.Time {
	return time.Date(2025, month, day, hour, 0, 0, 0, time.UTC)
}

func newTestCache(t *testing.T, src Source, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: date(time.March, 1, 12)}
	opts = append([]Option{
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(src, opts...), clock
}

func ids(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

var sample = []event.Event{
	mkEvent("jan31", date(time.January, 31, 9), date(time.January, 31, 10)),
	mkEvent("feb3", date(time.February, 3, 9), date(time.February, 3, 10)),
	mkEvent("feb3-late", date(time.February, 3, 22), date(time.February, 4, 1)),
	mkEvent("feb4", date(time.February, 4, 14), date(time.February, 4, 15)),
	mkEvent("feb20", date(time.February, 20, 8), date(time.February, 20, 9)),
}

func TestRead_EmptyFetchesInBackground(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	key := period.Day{Year: 2025, Month: time.February, Day: 3}

	e := c.Read(context.Background(), key)
	if e.State != StatePlaceholder || len(e.Events) != 0 {
		t.Fatalf("first read = %v with %v, want empty placeholder", e.State, ids(e.Events))
	}

	c.Wait()
	e = c.Read(context.Background(), key)
	if e.State != StateConfirmed {
		t.Fatalf("state = %v, want confirmed", e.State)
	}
	if got, want := ids(e.Events), []string{"feb3", "feb3-late"}; !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if n := src.Calls(key); n != 1 {
		t.Errorf("source called %d times, want 1", n)
	}
}

func TestRead_DayFromMonthNeedsNoFetch(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	month := period.Month{Year: 2025, Month: time.February}

	if _, err := c.Fetch(context.Background(), month); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	day := period.Day{Year: 2025, Month: time.February, Day: 4}
	e := c.Read(context.Background(), day)
	c.Wait()

	if e.State != StateConfirmed {
		t.Errorf("state = %v, want confirmed", e.State)
	}
	if got, want := ids(e.Events), []string{"feb3-late", "feb4"}; !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if n := src.Calls(day); n != 0 {
		t.Errorf("day fetched %d times, want none", n)
	}
	if len(e.DerivedFrom) != 1 || e.DerivedFrom[0] != month {
		t.Errorf("DerivedFrom = %v", e.DerivedFrom)
	}
}

func TestRead_DerivedDayKeepsZeroLengthEvents(t *testing.T) {
	// Older stores may hold zero-length rows; a derived day lists them
	// the way a fetched day does.
	marker := mkEvent("marker", date(time.February, 4, 12), date(time.February, 4, 12))
	src := newFakeSource(append([]event.Event{marker}, sample...)...)
	c, _ := newTestCache(t, src)
	ctx := context.Background()
	day := period.Day{Year: 2025, Month: time.February, Day: 4}

	fetched, err := c.Fetch(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	c.Invalidate(day)
	if _, err := c.Fetch(ctx, period.Month{Year: 2025, Month: time.February}); err != nil {
		t.Fatal(err)
	}

	derived := c.Read(ctx, day)
	if derived.State != StateConfirmed || len(derived.DerivedFrom) != 1 {
		t.Fatalf("entry = %v from %v, want confirmed from the month", derived.State, derived.DerivedFrom)
	}
	if got, want := ids(derived.Events), ids(fetched.Events); !slices.Equal(got, want) {
		t.Errorf("derived events = %v, fetched = %v", got, want)
	}
	if !slices.Contains(ids(derived.Events), "marker") {
		t.Errorf("derived events = %v, want marker", ids(derived.Events))
	}
}

func TestRead_DerivedDayRefetchesWhenStale(t *testing.T) {
	src := newFakeSource(sample...)
	c, clock := newTestCache(t, src)
	month := period.Month{Year: 2025, Month: time.February}
	day := period.Day{Year: 2025, Month: time.February, Day: 20}

	if _, err := c.Fetch(context.Background(), month); err != nil {
		t.Fatal(err)
	}
	c.Read(context.Background(), day)
	c.Wait()

	clock.Advance(DefaultStaleAfter)
	e := c.Read(context.Background(), day)
	if e.State != StatePlaceholder {
		t.Errorf("state = %v, want placeholder", e.State)
	}
	// The stale month cannot feed a derivation, so the day's own events
	// are kept.
	if got := ids(e.Events); !slices.Equal(got, []string{"feb20"}) {
		t.Errorf("events = %v", got)
	}
	c.Wait()
	if n := src.Calls(day); n != 1 {
		t.Errorf("day fetched %d times, want 1", n)
	}
}

func TestRead_WeekSpanningMonthsNeedsBoth(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	week := period.Week{Year: 2025, Week: 5} // Jan 27 - Feb 2

	if _, err := c.Fetch(context.Background(), period.Month{Year: 2025, Month: time.January}); err != nil {
		t.Fatal(err)
	}
	e := c.Read(context.Background(), week)
	if e.State != StatePlaceholder || len(e.Events) != 0 {
		t.Errorf("one month is not enough: %v %v", e.State, ids(e.Events))
	}
	c.Wait()

	c.Invalidate(week)
	if _, err := c.Fetch(context.Background(), period.Month{Year: 2025, Month: time.February}); err != nil {
		t.Fatal(err)
	}
	e = c.Read(context.Background(), week)
	if e.State != StateConfirmed {
		t.Errorf("state = %v, want confirmed", e.State)
	}
	if got := ids(e.Events); !slices.Equal(got, []string{"jan31"}) {
		t.Errorf("events = %v", got)
	}
}

func TestRead_WeekAssembledFromDays(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	ctx := context.Background()

	for _, d := range []int{3, 4} {
		if _, err := c.Fetch(ctx, period.Day{Year: 2025, Month: time.February, Day: d}); err != nil {
			t.Fatal(err)
		}
	}

	week := period.Week{Year: 2025, Week: 6}
	e := c.Read(ctx, week)
	if e.State != StatePlaceholder {
		t.Errorf("assembled week should be a placeholder, got %v", e.State)
	}
	if got, want := ids(e.Events), []string{"feb3", "feb3-late", "feb4"}; !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	c.Wait()
	if n := src.Calls(week); n != 1 {
		t.Errorf("week fetched %d times, want 1", n)
	}
}

func TestRead_MonthFromWeeksThenDays(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	ctx := context.Background()
	month := period.Month{Year: 2025, Month: time.February}

	if _, err := c.Fetch(ctx, period.Day{Year: 2025, Month: time.February, Day: 20}); err != nil {
		t.Fatal(err)
	}
	e := c.Read(ctx, month)
	if got := ids(e.Events); !slices.Equal(got, []string{"feb20"}) {
		t.Errorf("from days: %v", got)
	}
	c.Wait()

	c2, _ := newTestCache(t, src)
	if _, err := c2.Fetch(ctx, period.Week{Year: 2025, Week: 5}); err != nil {
		t.Fatal(err)
	}
	// Week 5 holds jan31, which falls outside February.
	e = c2.Read(ctx, month)
	if len(e.Events) != 0 || e.State != StatePlaceholder {
		t.Errorf("from weeks: %v %v", e.State, ids(e.Events))
	}
	if len(e.DerivedFrom) != 1 {
		t.Errorf("DerivedFrom = %v", e.DerivedFrom)
	}
	c2.Wait()
}

func TestInvalidateInterval_SpansBoundaries(t *testing.T) {
	c, _ := newTestCache(t, newFakeSource())

	before := interval.New(time.Date(2025, 1, 30, 23, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 1, 0, 0, 0, time.UTC))
	after := interval.New(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 11, 0, 0, 0, time.UTC))

	seen := map[period.Key]bool{}
	for _, k := range c.InvalidateInterval(before) {
		seen[k] = true
	}
	for _, k := range c.InvalidateInterval(after) {
		seen[k] = true
	}

	want := []period.Key{
		period.Day{Year: 2025, Month: time.January, Day: 30},
		period.Day{Year: 2025, Month: time.January, Day: 31},
		period.Day{Year: 2025, Month: time.February, Day: 1},
		period.Week{Year: 2025, Week: 5},
		period.Month{Year: 2025, Month: time.January},
		period.Month{Year: 2025, Month: time.February},
	}
	for _, k := range want {
		if !seen[k] {
			t.Errorf("%v was not invalidated", k)
		}
	}
	if len(seen) != len(want) {
		t.Errorf("invalidated %d keys, want %d", len(seen), len(want))
	}
}

func TestCoveringKeys_Deduplicates(t *testing.T) {
	iv := interval.New(date(time.February, 3, 9), date(time.February, 3, 10))
	if got := CoveringKeys(iv, time.UTC); len(got) != 3 {
		t.Errorf("same-day interval touches %d keys, want 3", len(got))
	}

	iv = interval.New(date(time.February, 28, 23), date(time.March, 3, 1))
	if got := CoveringKeys(iv, time.UTC); len(got) != 6 {
		t.Errorf("cross-month interval touches %d keys, want 6", len(got))
	}
}

func TestInvalidate_KeepsEventsAsPlaceholder(t *testing.T) {
	src := newFakeSource(sample...)
	c, _ := newTestCache(t, src)
	ctx := context.Background()
	day := period.Day{Year: 2025, Month: time.February, Day: 4}

	if _, err := c.Fetch(ctx, day); err != nil {
		t.Fatal(err)
	}
	src.SetEvents(sample[:3]...)
	c.InvalidateInterval(sample[3].Interval)

	if e, _ := c.Peek(day); e.State != StateInvalidated {
		t.Fatalf("state = %v, want invalidated", e.State)
	}

	e := c.Read(ctx, day)
	if e.State != StatePlaceholder {
		t.Errorf("state = %v", e.State)
	}
	if got, want := ids(e.Events), []string{"feb3-late", "feb4"}; !slices.Equal(got, want) {
		t.Errorf("placeholder events = %v, want %v", got, want)
	}

	c.Wait()
	e = c.Read(ctx, day)
	if got, want := ids(e.Events), []string{"feb3-late"}; !slices.Equal(got, want) {
		t.Errorf("confirmed events = %v, want %v", got, want)
	}
}

// gatedSource holds its first query until gate is closed. The events it
// returns are read before blocking.
type gatedSource struct {
	*fakeSource
	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (s *gatedSource) ListByPeriod(ctx context.Context, key period.Key) ([]event.Event, error) {
	events, err := s.fakeSource.ListByPeriod(ctx, key)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.started)
		<-s.gate
	}
	return events, err
}

func TestInvalidate_DuringFetchRefetches(t *testing.T) {
	src := newFakeSource()
	gated := &gatedSource{fakeSource: src, started: make(chan struct{}), gate: make(chan struct{})}
	c, _ := newTestCache(t, gated)
	ctx := context.Background()
	day := period.Day{Year: 2025, Month: time.February, Day: 3}

	c.Read(ctx, day)
	<-gated.started

	// The first fetch already saw an empty day. An event is created and
	// the day invalidated before that fetch returns.
	src.SetEvents(sample[1])
	c.InvalidateInterval(sample[1].Interval)
	c.Read(ctx, day)

	close(gated.gate)
	c.Wait()

	if n := src.Calls(day); n != 2 {
		t.Errorf("source queried %d times, want 2", n)
	}
	e, _ := c.Peek(day)
	if e.State != StateConfirmed {
		t.Errorf("state = %v, want confirmed", e.State)
	}
	if got, want := ids(e.Events), []string{"feb3"}; !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestFetch_InvalidatedWhileRunningIsNotStored(t *testing.T) {
	src := newFakeSource(sample...)
	gated := &gatedSource{fakeSource: src, started: make(chan struct{}), gate: make(chan struct{})}
	c, _ := newTestCache(t, gated)
	day := period.Day{Year: 2025, Month: time.February, Day: 3}

	done := make(chan Entry)
	go func() {
		e, err := c.Fetch(context.Background(), day)
		if err != nil {
			t.Error(err)
		}
		done <- e
	}()
	<-gated.started
	c.Invalidate(day)
	close(gated.gate)

	if e := <-done; len(e.Events) != 2 {
		t.Errorf("returned events = %v", ids(e.Events))
	}
	if _, ok := c.Peek(day); ok {
		t.Error("result of a superseded fetch was stored")
	}
}

func TestInvalidate_CascadesToDerived(t *testing.T) {
	c, _ := newTestCache(t, newFakeSource(sample...))
	ctx := context.Background()
	month := period.Month{Year: 2025, Month: time.February}
	day := period.Day{Year: 2025, Month: time.February, Day: 20}

	if _, err := c.Fetch(ctx, month); err != nil {
		t.Fatal(err)
	}
	c.Read(ctx, day)
	if !c.Fresh(day) {
		t.Fatal("derived day should be fresh")
	}

	c.Invalidate(month)
	if c.Fresh(day) {
		t.Error("invalidating the month should invalidate the day derived from it")
	}
	c.Wait()
}

func TestInvalidatedSourceIsNotDerivedFrom(t *testing.T) {
	c, _ := newTestCache(t, newFakeSource(sample...))
	ctx := context.Background()
	week := period.Week{Year: 2025, Week: 6}

	if _, err := c.Fetch(ctx, week); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(week)

	e := c.Read(ctx, period.Day{Year: 2025, Month: time.February, Day: 3})
	if len(e.Events) != 0 || len(e.DerivedFrom) != 0 {
		t.Errorf("derived from an invalidated week: %v", ids(e.Events))
	}
	c.Wait()
}

func TestFetchError_LeavesEntry(t *testing.T) {
	src := newFakeSource(sample...)
	var (
		mu     sync.Mutex
		failed []period.Key
	)
	c, _ := newTestCache(t, src, WithErrorHandler(func(k period.Key, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, k)
	}))
	ctx := context.Background()
	day := period.Day{Year: 2025, Month: time.February, Day: 3}

	if _, err := c.Fetch(ctx, day); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(day)

	boom := errors.New("connection refused")
	src.SetErr(boom)
	if _, err := c.Fetch(ctx, day); !errors.Is(err, boom) {
		t.Errorf("Fetch error = %v, want %v", err, boom)
	}

	e := c.Read(ctx, day)
	c.Wait()
	if e.State != StatePlaceholder || len(e.Events) != 2 {
		t.Errorf("entry = %v %v", e.State, ids(e.Events))
	}
	if got, _ := c.Peek(day); got.State != StatePlaceholder || len(got.Events) != 2 {
		t.Errorf("failed fetch changed the entry: %v %v", got.State, ids(got.Events))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 1 || failed[0] != day {
		t.Errorf("error handler saw %v", failed)
	}
}

func TestSnapshot_FreshOnly(t *testing.T) {
	c, clock := newTestCache(t, newFakeSource(sample...))
	ctx := context.Background()

	if _, err := c.Fetch(ctx, period.Day{Year: 2025, Month: time.February, Day: 3}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DefaultStaleAfter / 2)
	if _, err := c.Fetch(ctx, period.Week{Year: 2025, Week: 6}); err != nil {
		t.Fatal(err)
	}

	if got, want := ids(c.Snapshot()), []string{"feb3", "feb3-late", "feb4"}; !slices.Equal(got, want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}

	c.Invalidate(period.Week{Year: 2025, Week: 6})
	clock.Advance(DefaultStaleAfter / 2)
	if got := c.Snapshot(); len(got) != 0 {
		t.Errorf("snapshot of stale and invalidated entries = %v", ids(got))
	}
}

func TestEntriesAreCopies(t *testing.T) {
	c, _ := newTestCache(t, newFakeSource(sample...))
	day := period.Day{Year: 2025, Month: time.February, Day: 3}

	e, err := c.Fetch(context.Background(), day)
	if err != nil {
		t.Fatal(err)
	}
	e.Events[0].Title = "changed"

	got, _ := c.Peek(day)
	if got.Events[0].Title == "changed" {
		t.Error("caller mutated the cached entry")
	}
}
