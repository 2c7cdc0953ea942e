package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javiermolinar/almanac/internal/api"
	"github.com/javiermolinar/almanac/internal/cache"
	"github.com/javiermolinar/almanac/internal/calendar"
	"github.com/javiermolinar/almanac/internal/db"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/neighbor"
)

// Stack is the event store with the cache, finder and service on top.
type Stack struct {
	Repo     event.Repository
	Cache    *cache.Cache
	Finder   *neighbor.Finder
	Service  *calendar.Service
	Location *time.Location
	// Local is set when Repo is the SQLite database.
	Local bool
}

// Close waits for background fetches and closes the store.
func (s *Stack) Close() error {
	s.Cache.Wait()
	return s.Repo.Close()
}

// openStack builds the stack once per run: the events API client when
// api.base_url is set, the SQLite database otherwise.
func (a *App) openStack() (*Stack, error) {
	if a.stack != nil {
		return a.stack, nil
	}

	cfg := a.config
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var (
		repo   event.Repository
		source cache.Source
		local  bool
	)
	if cfg.Remote() {
		client, err := api.New(cfg.API.BaseURL,
			api.WithTimeout(cfg.Timeout()),
			api.WithLocation(loc),
			api.WithLogger(a.logger.With("component", "api")),
		)
		if err != nil {
			return nil, err
		}
		repo, source = client, client
	} else {
		store, err := openDatabase(cfg.Storage.DBPath, cfg.Storage.RejectOverlaps)
		if err != nil {
			return nil, err
		}
		repo, source, local = store, calendar.StoreSource{Repo: store, Loc: loc}, true
	}

	c := cache.New(source,
		cache.WithLocation(loc),
		cache.WithStaleAfter(cfg.StaleAfter()),
		cache.WithLogger(a.logger.With("component", "cache")),
	)
	f := neighbor.New(c, repo, a.logger.With("component", "neighbor"))
	svc := calendar.New(repo, c, f,
		calendar.WithMinSpan(cfg.Calendar.MinSpanMinutes),
		calendar.WithSnap(cfg.Calendar.SnapMinutes),
		calendar.WithLogger(a.logger.With("component", "calendar")),
	)

	a.stack = &Stack{Repo: repo, Cache: c, Finder: f, Service: svc, Location: loc, Local: local}
	return a.stack, nil
}

func openDatabase(path string, rejectOverlaps bool) (*db.SQLite, error) {
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	var opts []db.Option
	if rejectOverlaps {
		opts = append(opts, db.WithRejectOverlaps())
	}
	store, err := db.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return store, nil
}
