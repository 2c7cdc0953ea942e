// Package cache stores the events of day, week and month periods.
//
// Reads never block on the network. A missing or stale period is answered
// immediately with a placeholder derived from whatever neighboring
// granularity is already held, while the real query runs in the
// background and overwrites the entry when it resolves. Mutations
// invalidate every period covering either endpoint of the changed event.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/period"
)

// DefaultStaleAfter is how long a fetched period is served without
// refetching.
const DefaultStaleAfter = 5 * time.Minute

// Source fetches the events of a period.
type Source interface {
	ListByPeriod(ctx context.Context, key period.Key) ([]event.Event, error)
}

// State is the lifecycle state of an entry.
type State int

const (
	StateEmpty State = iota
	StatePlaceholder
	StateConfirmed
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePlaceholder:
		return "placeholder"
	case StateConfirmed:
		return "confirmed"
	case StateInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Entry is the cached content of one period. Entries handed out by the
// cache are copies.
type Entry struct {
	Key    period.Key
	Events []event.Event
	State  State
	// FetchedAt is when the events were confirmed by the source. Zero for
	// placeholders.
	FetchedAt time.Time
	UpdatedAt time.Time
	// DerivedFrom is set when a confirmed entry was filtered out of a
	// broader confirmed one instead of being fetched.
	DerivedFrom []period.Key
}

func (e *Entry) clone() Entry {
	out := *e
	out.Events = append([]event.Event(nil), e.Events...)
	out.DerivedFrom = append([]period.Key(nil), e.DerivedFrom...)
	return out
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLocation sets the location period boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Cache) { c.loc = loc }
}

// WithStaleAfter sets how long a confirmed entry stays fresh.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) { c.staleAfter = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithErrorHandler sets a callback for background fetch failures.
func WithErrorHandler(fn func(period.Key, error)) Option {
	return func(c *Cache) { c.onError = fn }
}

// Cache holds period entries. It is safe for concurrent use.
type Cache struct {
	source     Source
	now        func() time.Time
	loc        *time.Location
	staleAfter time.Duration
	logger     *slog.Logger
	onError    func(period.Key, error)

	mu      sync.Mutex
	entries map[period.Key]*Entry
	// epoch counts invalidations per key. A fetch only confirms its
	// result if no invalidation happened while it ran.
	epoch    map[period.Key]uint64
	fetching map[period.Key]uint64
	wg       sync.WaitGroup
}

// New returns an empty cache backed by source.
func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:     source,
		now:        time.Now,
		loc:        time.Local,
		staleAfter: DefaultStaleAfter,
		logger:     slog.Default(),
		entries:    make(map[period.Key]*Entry),
		epoch:      make(map[period.Key]uint64),
		fetching:   make(map[period.Key]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the location period boundaries are computed in.
func (c *Cache) Location() *time.Location {
	return c.loc
}

// Read returns the events for key without waiting on the source. A fresh
// confirmed entry is returned as is. Otherwise a placeholder is derived
// and returned while the key is fetched in the background.
func (c *Cache) Read(ctx context.Context, key period.Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok && c.fresh(e, now) {
		return e.clone()
	}

	d, derived := c.derive(key, now)
	if derived && d.confirmed {
		e := &Entry{
			Key:         key,
			Events:      d.events,
			State:       StateConfirmed,
			FetchedAt:   d.fetchedAt,
			UpdatedAt:   now,
			DerivedFrom: d.from,
		}
		c.entries[key] = e
		c.logger.Debug("cache derived", "key", key.String(), "from", keyStrings(d.from), "events", len(e.Events))
		return e.clone()
	}

	e := &Entry{Key: key, State: StatePlaceholder, UpdatedAt: now}
	switch {
	case derived:
		e.Events = d.events
		e.DerivedFrom = d.from
	case c.entries[key] != nil:
		e.Events = c.entries[key].Events
	}
	c.entries[key] = e
	c.startFetch(ctx, key)
	return e.clone()
}

// Fetch queries the source for key and confirms the entry. On failure the
// entry is left as it was. If key is invalidated while the query runs, the
// result is returned but not stored.
func (c *Cache) Fetch(ctx context.Context, key period.Key) (Entry, error) {
	c.mu.Lock()
	epoch := c.epoch[key]
	c.mu.Unlock()
	return c.fetch(ctx, key, epoch)
}

func (c *Cache) fetch(ctx context.Context, key period.Key, epoch uint64) (Entry, error) {
	events, err := c.source.ListByPeriod(ctx, key)
	if err != nil {
		c.logger.Warn("cache fetch failed", "key", key.String(), "error", err)
		return Entry{}, fmt.Errorf("fetch %s: %w", key, err)
	}
	return c.confirm(key, events, epoch), nil
}

// startFetch must be called with c.mu held. At most one fetch per key runs
// for each epoch; a read after an invalidation starts a new one even while
// an older fetch is still in flight.
func (c *Cache) startFetch(ctx context.Context, key period.Key) {
	epoch := c.epoch[key]
	if running, ok := c.fetching[key]; ok && running == epoch {
		return
	}
	c.fetching[key] = epoch
	c.wg.Add(1)

	// The fetch outlives the read that triggered it.
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			if running, ok := c.fetching[key]; ok && running == epoch {
				delete(c.fetching, key)
			}
			c.mu.Unlock()
		}()

		if _, err := c.fetch(ctx, key, epoch); err != nil && c.onError != nil {
			c.onError(key, err)
		}
	}()
}

func (c *Cache) confirm(key period.Key, events []event.Event, epoch uint64) Entry {
	events = event.UniqueByID(events)
	event.SortByStart(events)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := &Entry{
		Key:       key,
		Events:    events,
		State:     StateConfirmed,
		FetchedAt: now,
		UpdatedAt: now,
	}
	if c.epoch[key] != epoch {
		c.logger.Debug("cache fetch superseded", "key", key.String())
		return e.clone()
	}
	c.entries[key] = e
	c.logger.Debug("cache confirmed", "key", key.String(), "events", len(events))
	return e.clone()
}

// Wait blocks until every background fetch has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Peek returns the entry for key without deriving or fetching.
func (c *Cache) Peek(key period.Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Fresh reports whether key holds a confirmed entry that is not stale.
func (c *Cache) Fresh(key period.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && c.fresh(e, c.now())
}

// Invalidate marks key as out of date. Its events are kept as the
// placeholder for the next read. Entries derived from key are invalidated
// too.
func (c *Cache) Invalidate(key period.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate(key)
}

func (c *Cache) invalidate(key period.Key) {
	c.epoch[key]++
	e, ok := c.entries[key]
	if !ok || e.State == StateInvalidated {
		return
	}
	e.State = StateInvalidated
	e.UpdatedAt = c.now()
	c.logger.Debug("cache invalidated", "key", key.String())

	for k, other := range c.entries {
		for _, from := range other.DerivedFrom {
			if from == key && other.State == StateConfirmed {
				c.invalidate(k)
				break
			}
		}
	}
}

// InvalidateInterval invalidates the day, week and month covering each
// endpoint of iv and returns the keys touched, without duplicates.
func (c *Cache) InvalidateInterval(iv interval.Interval) []period.Key {
	keys := CoveringKeys(iv, c.loc)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.invalidate(k)
	}
	return keys
}

// CoveringKeys returns the day, week and month keys containing the start
// and the end of iv in loc, without duplicates.
func CoveringKeys(iv interval.Interval, loc *time.Location) []period.Key {
	var keys []period.Key
	seen := make(map[period.Key]bool, 6)
	for _, t := range []time.Time{iv.Start, iv.End} {
		for _, k := range period.Covering(t.In(loc)) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Snapshot returns the events of every fresh confirmed entry, without
// duplicates.
func (c *Cache) Snapshot() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var events []event.Event
	for _, e := range c.entries {
		if c.fresh(e, now) {
			events = append(events, e.Events...)
		}
	}
	events = event.UniqueByID(events)
	event.SortByStart(events)
	return events
}

func (c *Cache) fresh(e *Entry, now time.Time) bool {
	return e.State == StateConfirmed && now.Sub(e.FetchedAt) < c.staleAfter
}

// usable reports whether e can feed a derivation: it must hold events that
// were not invalidated and are not stale. Placeholders age from the time
// they were built.
func (c *Cache) usable(e *Entry, now time.Time) bool {
	switch e.State {
	case StateConfirmed:
		return c.fresh(e, now)
	case StatePlaceholder:
		return now.Sub(e.UpdatedAt) < c.staleAfter
	default:
		return false
	}
}

func keyStrings(keys []period.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
