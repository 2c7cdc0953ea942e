package cache

import (
	"time"

	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/period"
)

type derivation struct {
	events []event.Event
	from   []period.Key
	// confirmed is set when every source was a fresh confirmed entry that
	// fully covers the target, so the result needs no fetch.
	confirmed bool
	fetchedAt time.Time
}

// derive builds the events of key from the entries of one neighboring
// granularity. The broader granularity is tried first, then the result is
// assembled from the narrower one. Derivation never chains: a day is never
// built from a month through a week. Must be called with c.mu held.
func (c *Cache) derive(key period.Key, now time.Time) (derivation, bool) {
	switch k := key.(type) {
	case period.Day:
		if d, ok := c.narrow(k, []period.Key{k.Week()}, now); ok {
			return d, true
		}
		return c.narrow(k, []period.Key{k.MonthKey()}, now)
	case period.Week:
		months := k.Months()
		sources := make([]period.Key, len(months))
		for i, m := range months {
			sources[i] = m
		}
		if d, ok := c.narrow(k, sources, now); ok {
			return d, true
		}
		return c.assemble(k, dayKeys(k.Days()), now)
	case period.Month:
		weeks := k.Weeks()
		sources := make([]period.Key, len(weeks))
		for i, w := range weeks {
			sources[i] = w
		}
		if d, ok := c.assemble(k, sources, now); ok {
			return d, true
		}
		return c.assemble(k, dayKeys(k.Days()), now)
	}
	return derivation{}, false
}

// narrow filters the events of broader entries down to target. Every
// source must be usable, since together they cover the target.
func (c *Cache) narrow(target period.Key, sources []period.Key, now time.Time) (derivation, bool) {
	d := derivation{confirmed: true}
	var all []event.Event
	for _, k := range sources {
		e, ok := c.entries[k]
		if !ok || !c.usable(e, now) {
			return derivation{}, false
		}
		all = append(all, e.Events...)
		d.from = append(d.from, k)
		if e.State != StateConfirmed {
			d.confirmed = false
		} else if d.fetchedAt.IsZero() || e.FetchedAt.Before(d.fetchedAt) {
			d.fetchedAt = e.FetchedAt
		}
	}
	if !d.confirmed {
		d.fetchedAt = time.Time{}
	}
	d.events = c.within(target, all)
	return d, true
}

// assemble unions whichever narrower entries are usable. The result may be
// incomplete, so it is always a placeholder.
func (c *Cache) assemble(target period.Key, sources []period.Key, now time.Time) (derivation, bool) {
	var d derivation
	var all []event.Event
	for _, k := range sources {
		e, ok := c.entries[k]
		if !ok || !c.usable(e, now) {
			continue
		}
		all = append(all, e.Events...)
		d.from = append(d.from, k)
	}
	if len(d.from) == 0 {
		return derivation{}, false
	}
	d.events = c.within(target, all)
	return d, true
}

func (c *Cache) within(target period.Key, events []event.Event) []event.Event {
	out := event.Filter(event.UniqueByID(events), event.ListedIn(target.Interval(c.loc)))
	event.SortByStart(out)
	return out
}

func dayKeys(days []period.Day) []period.Key {
	keys := make([]period.Key, len(days))
	for i, d := range days {
		keys[i] = d
	}
	return keys
}
