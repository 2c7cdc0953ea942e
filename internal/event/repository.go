package event

import (
	"context"
	"fmt"
	"time"
)

// SortField names a column events can be ordered by.
type SortField string

const (
	SortByID          SortField = "id"
	SortByUUID        SortField = "uuid"
	SortByTitle       SortField = "title"
	SortByDescription SortField = "description"
	SortByDateFrom    SortField = "date_from"
	SortByDateTo      SortField = "date_to"
	SortByCreatedAt   SortField = "created_at"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortByID, SortByUUID, SortByTitle, SortByDescription, SortByDateFrom, SortByDateTo, SortByCreatedAt:
		return f, nil
	default:
		return "", fmt.Errorf("sort field %q not supported", s)
	}
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder validates a sort direction. Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("sort order %q not supported", s)
	}
}

// Query filters and orders a listing.
//
// With both Start and End set, events overlapping [Start, End) match.
// With only Start, events ending after Start match. With only End,
// events starting before End match.
type Query struct {
	Start time.Time
	End   time.Time
	Sort  SortField
	Order Order
	Limit int
}

// Repository defines the storage interface for events.
type Repository interface {
	// Create stores a new event and returns it with its ID assigned.
	Create(ctx context.Context, d Draft) (Event, error)

	// Get retrieves an event by ID. Returns ErrEventNotFound if missing.
	Get(ctx context.Context, id string) (Event, error)

	// List returns events matching q.
	List(ctx context.Context, q Query) ([]Event, error)

	// Update replaces the editable fields of an event.
	// Returns ErrEventNotFound if missing.
	Update(ctx context.Context, id string, d Draft) error

	// Delete removes an event. Returns ErrEventNotFound if missing.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}
