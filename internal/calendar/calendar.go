// Package calendar ties the event store, the period cache and the
// neighbor finder together. Every mutation goes through a Service so the
// cached periods and remembered neighbors never outlive the change.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
	"github.com/javiermolinar/almanac/internal/neighbor"
	"github.com/javiermolinar/almanac/internal/period"
)

// DefaultMinSpan is the shortest event, in minutes.
const DefaultMinSpan = 10

// Cache is the part of the period cache the service uses.
type Cache interface {
	Read(ctx context.Context, key period.Key) cache.Entry
	InvalidateInterval(iv interval.Interval) []period.Key
	Location() *time.Location
	Wait()
}

// Finder is the part of the neighbor finder the service uses.
type Finder interface {
	Neighbors(ctx context.Context, iv interval.Interval, excludeID string) (neighbor.Result, error)
	Reset()
}

// Service runs event mutations and opens edit sessions.
type Service struct {
	repo    event.Repository
	cache   Cache
	finder  Finder
	minSpan int
	snap    int
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMinSpan sets the shortest interval an edit session allows.
func WithMinSpan(minutes int) Option {
	return func(s *Service) { s.minSpan = minutes }
}

// WithSnap sets the resize step of edit sessions, in minutes.
func WithSnap(minutes int) Option {
	return func(s *Service) { s.snap = minutes }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New returns a Service.
func New(repo event.Repository, c Cache, f Finder, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		cache:   c,
		finder:  f,
		minSpan: DefaultMinSpan,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the location days are computed in.
func (s *Service) Location() *time.Location {
	return s.cache.Location()
}

// Period reads a period through the cache.
func (s *Service) Period(ctx context.Context, key period.Key) cache.Entry {
	return s.cache.Read(ctx, key)
}

// Wait blocks until the cache's background fetches have finished.
func (s *Service) Wait() {
	s.cache.Wait()
}

// Get returns one event from the store.
func (s *Service) Get(ctx context.Context, id string) (event.Event, error) {
	return s.repo.Get(ctx, id)
}

// Neighbors returns the events around iv, ignoring the event with id
// excludeID when it is not empty.
func (s *Service) Neighbors(ctx context.Context, iv interval.Interval, excludeID string) (neighbor.Result, error) {
	return s.finder.Neighbors(ctx, iv, excludeID)
}

// Create stores a new event.
func (s *Service) Create(ctx context.Context, d event.Draft) (event.Event, error) {
	e, err := s.repo.Create(ctx, d)
	if err != nil {
		return event.Event{}, fmt.Errorf("creating event: %w", err)
	}
	s.invalidate(d.Interval)
	s.logger.Info("event created", "id", e.ID, "interval", d.Interval.String())
	return e, nil
}

// Update replaces the editable fields of e. It panics if e is nil.
func (s *Service) Update(ctx context.Context, e *event.Event, d event.Draft) (event.Event, error) {
	if e == nil {
		panic("calendar: Update called without an event")
	}

	err := s.repo.Update(ctx, e.ID, d)
	if err != nil && !errors.Is(err, event.ErrEventNotFound) {
		return event.Event{}, fmt.Errorf("updating event %s: %w", e.ID, err)
	}
	// A missing event is gone from the store too, so its cached copies are
	// stale either way.
	s.invalidate(e.Interval, d.Interval)
	if err != nil {
		return event.Event{}, fmt.Errorf("updating event %s: %w", e.ID, err)
	}

	s.logger.Info("event updated", "id", e.ID, "from", e.Interval.String(), "to", d.Interval.String())
	return event.Event{
		ID:          e.ID,
		Title:       d.Title,
		Description: d.Description,
		Interval:    d.Interval,
		CreatedAt:   e.CreatedAt,
	}, nil
}

// Delete removes e. It panics if e is nil.
func (s *Service) Delete(ctx context.Context, e *event.Event) error {
	if e == nil {
		panic("calendar: Delete called without an event")
	}

	err := s.repo.Delete(ctx, e.ID)
	if err != nil && !errors.Is(err, event.ErrEventNotFound) {
		return fmt.Errorf("deleting event %s: %w", e.ID, err)
	}
	s.invalidate(e.Interval)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", e.ID, err)
	}

	s.logger.Info("event deleted", "id", e.ID)
	return nil
}

func (s *Service) invalidate(ivs ...interval.Interval) {
	var keys []period.Key
	for _, iv := range ivs {
		keys = append(keys, s.cache.InvalidateInterval(iv)...)
	}
	s.finder.Reset()
	s.logger.Debug("periods invalidated", "count", len(keys))
}
