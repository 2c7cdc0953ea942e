// Package neighbor finds the events immediately before and after an
// interval, which bound how far the interval can be resized.
package neighbor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// Snapshotter exposes the events currently held in memory.
type Snapshotter interface {
	Snapshot() []event.Event
}

// Querier runs filtered listings against the event store.
type Querier interface {
	List(ctx context.Context, q event.Query) ([]event.Event, error)
}

// Result is the pair of neighbors found for a reference interval. A nil
// side means there is no such event.
type Result struct {
	Ref  interval.Interval
	Prev *event.Event
	Next *event.Event

	// excluded is the event id left out of the lookup.
	excluded string
}

// holds reports whether iv still sits between the cached neighbors.
func (r Result) holds(iv interval.Interval) bool {
	if r.Prev != nil && r.Prev.End.After(iv.Start) {
		return false
	}
	if r.Next != nil && iv.End.After(r.Next.Start) {
		return false
	}
	return true
}

// Finder looks up neighbors in memory first and falls back to the store.
// The last result is reused while the interval stays between its
// neighbors and the same event is excluded. It is safe for concurrent use.
type Finder struct {
	cache  Snapshotter
	store  Querier
	logger *slog.Logger

	mu   sync.Mutex
	last *Result
}

// New returns a Finder.
func New(cache Snapshotter, store Querier, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{cache: cache, store: store, logger: logger}
}

// Reset drops the remembered result. Call it after any mutation.
func (f *Finder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = nil
}

// ClosestPrevious returns the event ending at or before iv.Start with the
// latest end, or nil.
func (f *Finder) ClosestPrevious(ctx context.Context, iv interval.Interval, excludeID string) (*event.Event, error) {
	r, err := f.Neighbors(ctx, iv, excludeID)
	return r.Prev, err
}

// ClosestNext returns the event starting at or after iv.End with the
// earliest start, or nil.
func (f *Finder) ClosestNext(ctx context.Context, iv interval.Interval, excludeID string) (*event.Event, error) {
	r, err := f.Neighbors(ctx, iv, excludeID)
	return r.Next, err
}

// Neighbors returns both neighbors of iv. The event with id excludeID is
// ignored; pass "" to consider every event.
func (f *Finder) Neighbors(ctx context.Context, iv interval.Interval, excludeID string) (Result, error) {
	f.mu.Lock()
	if f.last != nil && f.last.excluded == excludeID && f.last.holds(iv) {
		r := *f.last
		f.mu.Unlock()
		r.Ref = iv
		return r, nil
	}
	f.mu.Unlock()

	keep := event.All
	if excludeID != "" {
		keep = event.ExcludeID(excludeID)
	}

	held := event.Filter(f.cache.Snapshot(), keep)
	r := Result{
		Ref:      iv,
		Prev:     event.ClosestPrevious(held, iv),
		Next:     event.ClosestNext(held, iv),
		excluded: excludeID,
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.Prev == nil {
		g.Go(func() error {
			e, err := f.query(gctx, event.Query{
				End:   iv.Start,
				Sort:  event.SortByDateTo,
				Order: event.Desc,
				Limit: 1,
			}, keep, iv, event.ClosestPrevious)
			r.Prev = e
			return err
		})
	}
	if r.Next == nil {
		g.Go(func() error {
			e, err := f.query(gctx, event.Query{
				Start: iv.End,
				Sort:  event.SortByDateFrom,
				Order: event.Asc,
				Limit: 1,
			}, keep, iv, event.ClosestNext)
			r.Next = e
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Ref: iv}, fmt.Errorf("finding neighbors: %w", err)
	}

	f.mu.Lock()
	f.last = &r
	f.mu.Unlock()

	f.logger.Debug("neighbors resolved", "interval", iv.String(), "prev", describe(r.Prev), "next", describe(r.Next))
	return r, nil
}

// query asks the store for the single closest event on one side. The
// store's filter also matches events overlapping iv, so when the top hit
// is rejected the side is queried again without a limit and the closest
// acceptable event is picked locally.
func (f *Finder) query(
	ctx context.Context,
	q event.Query,
	keep event.Predicate,
	iv interval.Interval,
	closest func([]event.Event, interval.Interval) *event.Event,
) (*event.Event, error) {
	events, err := f.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if e := closest(event.Filter(events, keep), iv); e != nil || len(events) < q.Limit {
		return e, nil
	}

	q.Limit = 0
	events, err = f.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return closest(event.Filter(events, keep), iv), nil
}

func describe(e *event.Event) string {
	if e == nil {
		return "none"
	}
	return e.String()
}
