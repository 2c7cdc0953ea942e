package calendar

import (
	"context"
	"time"

	"github.com/javiermolinar/almanac/internal/api"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/period"
)

// StoreSource serves period listings straight from a repository, for
// running against a local database without the HTTP API.
type StoreSource struct {
	Repo event.Repository
	Loc  *time.Location
}

// ListByPeriod lists the events overlapping key in s.Loc.
func (s StoreSource) ListByPeriod(ctx context.Context, key period.Key) ([]event.Event, error) {
	iv := key.Interval(s.Loc)
	events, err := s.Repo.List(ctx, event.Query{
		Start: iv.Start,
		End:   iv.End,
		Sort:  event.SortByDateFrom,
		Order: event.Asc,
	})
	if err != nil {
		return nil, err
	}
	// Same whole-day handling as events coming over the API.
	for i, e := range events {
		events[i] = api.ToEvent(api.FromEvent(e), s.Loc)
	}
	return events, nil
}
