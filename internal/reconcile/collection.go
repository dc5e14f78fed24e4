// Package reconcile keeps local projections of store rows consistent with
// full fetches and with change events that may arrive twice or out of
// order.
package reconcile

import "slices"

// Collection is an upsert-by-id set of rows with an ordered read view.
// It is not safe for concurrent use; projections guard it.
type Collection[T any] struct {
	key   func(T) string
	stale func(held, incoming T) bool
	cmp   func(a, b T) int

	items map[string]T

	// While a fetch is in flight, ids written by events are recorded so
	// the fetched snapshot cannot roll them back. false marks a removal.
	fetching int
	touched  map[string]bool
}

// NewCollection builds a collection. stale reports whether incoming is
// older than held and must be discarded; cmp orders List.
func NewCollection[T any](
	key func(T) string,
	stale func(held, incoming T) bool,
	cmp func(a, b T) int,
) *Collection[T] {
	return &Collection[T]{
		key:   key,
		stale: stale,
		cmp:   cmp,
		items: make(map[string]T),
	}
}

// Upsert stores v, replacing any row with the same id unless v is stale.
// It covers both insert (including duplicate delivery) and update
// (including an update for a row never fetched). It reports whether v
// was stored.
func (c *Collection[T]) Upsert(v T) bool {
	id := c.key(v)
	if held, ok := c.items[id]; ok && c.stale(held, v) {
		return false
	}
	c.items[id] = v
	c.touch(id, true)
	return true
}

// Remove deletes id. Removing an absent id is a no-op.
func (c *Collection[T]) Remove(id string) (T, bool) {
	v, ok := c.items[id]
	if ok {
		delete(c.items, id)
	}
	c.touch(id, false)
	return v, ok
}

func (c *Collection[T]) touch(id string, present bool) {
	if c.fetching > 0 {
		c.touched[id] = present
	}
}

// BeginFetch marks the start of a full fetch. Every BeginFetch must be
// matched by Reset or EndFetch.
func (c *Collection[T]) BeginFetch() {
	if c.fetching == 0 {
		c.touched = make(map[string]bool)
	}
	c.fetching++
}

// EndFetch abandons a fetch without applying it.
func (c *Collection[T]) EndFetch() {
	if c.fetching == 0 {
		return
	}
	c.fetching--
	if c.fetching == 0 {
		c.touched = nil
	}
}

// Touched reports whether id was written or removed since the current
// fetch began.
func (c *Collection[T]) Touched(id string) bool {
	_, ok := c.touched[id]
	return ok
}

// Reset replaces the contents with a full fetch and ends the fetch begun
// by BeginFetch. A held row newer than its fetched copy survives, and so
// does anything events did while the fetch was in flight: rows inserted
// stay even when the snapshot predates them, rows removed stay removed.
func (c *Collection[T]) Reset(all []T) {
	next := make(map[string]T, len(all))
	for _, v := range all {
		id := c.key(v)
		if present, ok := c.touched[id]; ok && !present {
			continue
		}
		if held, ok := c.items[id]; ok && c.stale(held, v) {
			next[id] = held
			continue
		}
		next[id] = v
	}

	for id, present := range c.touched {
		if !present {
			continue
		}
		if _, ok := next[id]; ok {
			continue
		}
		if held, ok := c.items[id]; ok {
			next[id] = held
		}
	}

	c.items = next
	c.EndFetch()
}

func (c *Collection[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

// List returns a sorted copy.
func (c *Collection[T]) List() []T {
	return c.Filter(nil)
}

// Filter returns a sorted copy of the rows matching keep (all rows when
// keep is nil).
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, c.cmp)
	return out
}
