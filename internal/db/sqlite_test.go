package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

func hm(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, time.UTC)
}

func mustDraft(t *testing.T, title string, start, end time.Time) event.Draft {
	t.Helper()
	d, err := event.NewDraft(title, "", interval.New(start, end))
	if err != nil {
		t.Fatalf("NewDraft: %v", err)
	}
	return d
}

func mustCreate(t *testing.T, repo *SQLite, title string, start, end time.Time) event.Event {
	t.Helper()
	e, err := repo.Create(context.Background(), mustDraft(t, title, start, end))
	if err != nil {
		t.Fatalf("Create %q failed: %v", title, err)
	}
	return e
}

func titles(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateAndGet(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)
	repo := newTestRepo(t, WithClock(func() time.Time { return created }))
	ctx := context.Background()

	d := mustDraft(t, "Write unit tests", hm(9, 9, 0), hm(9, 11, 0))
	d.Description = "db package"

	e, err := repo.Create(ctx, d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected ID to be set after insert")
	}

	got, err := repo.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Write unit tests" || got.Description != "db package" {
		t.Errorf("got %+v", got)
	}
	if !got.Start.Equal(d.Start) || !got.End.Equal(d.End) {
		t.Errorf("interval = %v, want %v", got.Interval, d.Interval)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestCreate_StoresUTC(t *testing.T) {
	repo := newTestRepo(t)
	loc := time.FixedZone("PST", -8*60*60)

	start := time.Date(2025, 1, 9, 23, 0, 0, 0, loc)
	e := mustCreate(t, repo, "Late call", start, start.Add(time.Hour))

	got, err := repo.Get(context.Background(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Start.Equal(start) {
		t.Errorf("start = %v, want %v", got.Start, start)
	}
	if got.Start.Location() != time.UTC {
		t.Errorf("start location = %v, want UTC", got.Start.Location())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	repo := newTestRepo(t)
	mustCreate(t, repo, "yesterday", hm(8, 9, 0), hm(8, 10, 0))
	mustCreate(t, repo, "overnight", hm(8, 23, 0), hm(9, 1, 0))
	mustCreate(t, repo, "morning", hm(9, 9, 0), hm(9, 10, 0))
	mustCreate(t, repo, "evening", hm(9, 18, 0), hm(9, 19, 0))
	mustCreate(t, repo, "tomorrow", hm(10, 0, 0), hm(10, 1, 0))
	// Legacy whole-day marker: zero length at midnight. Drafts refuse it,
	// so it goes in as older stores wrote it.
	if _, err := repo.Create(context.Background(), event.Draft{Title: "holiday", Interval: interval.New(hm(9, 0, 0), hm(9, 0, 0))}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		q    event.Query
		want []string
	}{
		{
			name: "day overlap",
			q:    event.Query{Start: hm(9, 0, 0), End: hm(10, 0, 0)},
			want: []string{"overnight", "holiday", "morning", "evening"},
		},
		{
			name: "start only",
			q:    event.Query{Start: hm(9, 18, 30)},
			want: []string{"evening", "tomorrow"},
		},
		{
			name: "end only",
			q:    event.Query{End: hm(8, 23, 30)},
			want: []string{"yesterday", "overnight"},
		},
		{
			name: "closest previous",
			q:    event.Query{End: hm(9, 18, 0), Sort: event.SortByDateTo, Order: event.Desc, Limit: 1},
			want: []string{"morning"},
		},
		{
			name: "closest next",
			q:    event.Query{Start: hm(9, 10, 0), Sort: event.SortByDateFrom, Order: event.Asc, Limit: 1},
			want: []string{"evening"},
		},
		{
			name: "sorted by title",
			q:    event.Query{Start: hm(9, 12, 0), Sort: event.SortByTitle},
			want: []string{"evening", "tomorrow"},
		},
		{
			name: "everything",
			q:    event.Query{},
			want: []string{"yesterday", "overnight", "holiday", "morning", "evening", "tomorrow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.List(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if got := titles(events); !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestList_RejectsUnknownSort(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.List(context.Background(), event.Query{Sort: "date_from; DROP TABLE events"}); err == nil {
		t.Error("expected error for unknown sort field")
	}
	if _, err := repo.List(context.Background(), event.Query{Sort: event.SortByID, Order: "sideways"}); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	e := mustCreate(t, repo, "Standup", hm(9, 9, 0), hm(9, 9, 15))

	d := mustDraft(t, "Standup (moved)", hm(9, 9, 30), hm(9, 9, 45))
	if err := repo.Update(ctx, e.ID, d); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Standup (moved)" || !got.Start.Equal(hm(9, 9, 30)) {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Error("update should not touch created_at")
	}

	if err := repo.Update(ctx, "missing", d); !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("Update missing: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	e := mustCreate(t, repo, "Lunch", hm(9, 12, 0), hm(9, 13, 0))

	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, e.ID); !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := repo.Delete(ctx, e.ID); !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("second Delete: %v", err)
	}
}

func TestRejectOverlaps(t *testing.T) {
	repo := newTestRepo(t, WithRejectOverlaps())
	ctx := context.Background()
	e := mustCreate(t, repo, "Deep work", hm(9, 9, 0), hm(9, 11, 0))

	_, err := repo.Create(ctx, mustDraft(t, "Clash", hm(9, 10, 0), hm(9, 12, 0)))
	if !errors.Is(err, event.ErrEventOverlap) {
		t.Errorf("expected ErrEventOverlap, got %v", err)
	}

	// Touching is fine.
	mustCreate(t, repo, "After", hm(9, 11, 0), hm(9, 12, 0))

	// An event does not overlap itself.
	if err := repo.Update(ctx, e.ID, mustDraft(t, "Deep work", hm(9, 8, 0), hm(9, 10, 0))); err != nil {
		t.Errorf("self update: %v", err)
	}
	if err := repo.Update(ctx, e.ID, mustDraft(t, "Deep work", hm(9, 8, 0), hm(9, 11, 30))); !errors.Is(err, event.ErrEventOverlap) {
		t.Errorf("expected ErrEventOverlap, got %v", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almanac.db")

	repo, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	e := mustCreate(t, repo, "Persisted", hm(9, 9, 0), hm(9, 10, 0))
	if err := repo.Close(); err != nil {
		t.Fatal(err)
	}

	repo, err = New(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if _, err := repo.Get(context.Background(), e.ID); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func newTestRepo(t *testing.T, opts ...Option) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
