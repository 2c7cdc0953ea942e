// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// timeLayout is fixed width so stored UTC timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite implements event.Repository using SQLite.
type SQLite struct {
	db             *sql.DB
	now            func() time.Time
	rejectOverlaps bool
}

// Option configures the store.
type Option func(*SQLite)

// WithClock sets the time source for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

// WithRejectOverlaps makes Create and Update fail with event.ErrEventOverlap
// instead of storing overlapping events.
func WithRejectOverlaps() Option {
	return func(s *SQLite) { s.rejectOverlaps = true }
}

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Create adds a new event and returns it with a fresh UUID.
func (s *SQLite) Create(ctx context.Context, d event.Draft) (event.Event, error) {
	if s.rejectOverlaps {
		if err := s.checkOverlap(ctx, d.Interval, ""); err != nil {
			return event.Event{}, err
		}
	}

	e := event.Event{
		ID:          uuid.New().String(),
		Title:       d.Title,
		Description: d.Description,
		Interval:    d.Interval,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}

	query := `
		INSERT INTO events (uuid, title, description, date_from, date_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		formatTime(e.Start),
		formatTime(e.End),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	return e, nil
}

// Get retrieves an event by UUID.
func (s *SQLite) Get(ctx context.Context, id string) (event.Event, error) {
	query := `
		SELECT uuid, title, description, date_from, date_to, created_at
		FROM events
		WHERE uuid = ?
	`
	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, event.ErrEventNotFound
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("querying event: %w", err)
	}
	return e, nil
}

// List returns events matching q.
//
// With both bounds set, events overlapping [Start, End) match; a
// zero-length event matches when its instant falls inside the range.
// With only Start, events ending after it match. With only End, events
// starting before it match. Results default to ascending start order.
func (s *SQLite) List(ctx context.Context, q event.Query) ([]event.Event, error) {
	sortField := q.Sort
	if sortField == "" {
		sortField = event.SortByDateFrom
	}
	if _, err := event.ParseSortField(string(sortField)); err != nil {
		return nil, err
	}
	order := "ASC"
	switch q.Order {
	case event.Asc, "":
	case event.Desc:
		order = "DESC"
	default:
		return nil, fmt.Errorf("sort order %q not supported", q.Order)
	}

	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("SELECT uuid, title, description, date_from, date_to, created_at FROM events")

	switch {
	case !q.Start.IsZero() && !q.End.IsZero():
		b.WriteString(" WHERE (date_from < ? AND date_to > ?)")
		b.WriteString(" OR (date_from = date_to AND date_from >= ? AND date_from < ?)")
		start, end := formatTime(q.Start), formatTime(q.End)
		args = append(args, end, start, start, end)
	case !q.Start.IsZero():
		b.WriteString(" WHERE date_to > ?")
		args = append(args, formatTime(q.Start))
	case !q.End.IsZero():
		b.WriteString(" WHERE date_from < ?")
		args = append(args, formatTime(q.End))
	}

	// The sort field was validated against the column whitelist above.
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", sortField, order, order)
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// Update replaces the editable fields of an event.
func (s *SQLite) Update(ctx context.Context, id string, d event.Draft) error {
	if s.rejectOverlaps {
		if err := s.checkOverlap(ctx, d.Interval, id); err != nil {
			return err
		}
	}

	query := `
		UPDATE events
		SET title = ?, description = ?, date_from = ?, date_to = ?
		WHERE uuid = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		d.Title,
		d.Description,
		formatTime(d.Start),
		formatTime(d.End),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes an event.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE uuid = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return expectOneRow(result)
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// checkOverlap returns event.ErrEventOverlap if iv overlaps a stored event other
// than excludeID.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
func (s *SQLite) checkOverlap(ctx context.Context, iv interval.Interval, excludeID string) error {
	query := `
		SELECT COUNT(*) FROM events
		WHERE date_from < ? AND date_to > ? AND uuid != ?
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, formatTime(iv.End), formatTime(iv.Start), excludeID).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}
	if count > 0 {
		return event.ErrEventOverlap
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (event.Event, error) {
	var (
		e                        event.Event
		dateFrom, dateTo, create string
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &dateFrom, &dateTo, &create); err != nil {
		return event.Event{}, err
	}

	var err error
	if e.Start, err = parseTime(dateFrom); err != nil {
		return event.Event{}, fmt.Errorf("parsing date_from: %w", err)
	}
	if e.End, err = parseTime(dateTo); err != nil {
		return event.Event{}, fmt.Errorf("parsing date_to: %w", err)
	}
	if e.CreatedAt, err = parseTime(create); err != nil {
		return event.Event{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the stored layout and plain RFC 3339.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
