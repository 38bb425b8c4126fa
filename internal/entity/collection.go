package entity

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// ListOptions controls filtering, sorting, and pagination for List.
type ListOptions[T Record[T]] struct {
	// Filter keeps records for which the predicate returns true.
	// Nil keeps everything.
	Filter func(T) bool

	// SortKey extracts the sort key for a record. Nil preserves insertion
	// order. Use FoldKey for case-insensitive string keys.
	SortKey func(T) string

	// Desc reverses the sort direction. Ties always break on insertion
	// order regardless of direction (stable sort over an insertion-ordered
	// snapshot).
	Desc bool

	// Offset and Limit paginate the filtered, sorted result.
	// Limit <= 0 means no limit.
	Offset int
	Limit  int
}

// Page is a paginated listing result.
type Page[T any] struct {
	Items   []T
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// Collection is an insertion-ordered in-memory record store.
//
// Thread-safety: all methods are safe for concurrent use. The harness is
// effectively single-threaded (all network activity is scheduled
// callbacks), but channel timers fire on their own goroutines, so the
// mutex is load-bearing rather than decorative.
type Collection[T Record[T]] struct {
	mu    sync.Mutex
	items map[string]T
	order []string
	ids   IDGenerator
}

// NewCollection creates an empty collection using the given id generator
// for records created without an id.
func NewCollection[T Record[T]](ids IDGenerator) *Collection[T] {
	return &Collection[T]{
		items: make(map[string]T),
		ids:   ids,
	}
}

// List returns the filtered, sorted, paginated view of the collection.
// Returned records are clones.
func (c *Collection[T]) List(opts ListOptions[T]) Page[T] {
	c.mu.Lock()
	matched := make([]T, 0, len(c.order))
	for _, id := range c.order {
		rec := c.items[id]
		if opts.Filter == nil || opts.Filter(rec) {
			matched = append(matched, rec.Clone())
		}
	}
	c.mu.Unlock()

	if opts.SortKey != nil {
		// SliceStable over the insertion-ordered snapshot gives the
		// directional tie-break on insertion order for free.
		sort.SliceStable(matched, func(i, j int) bool {
			ki, kj := opts.SortKey(matched[i]), opts.SortKey(matched[j])
			if opts.Desc {
				return ki > kj
			}
			return ki < kj
		})
	}

	total := len(matched)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if opts.Limit > 0 && offset+opts.Limit < end {
		end = offset + opts.Limit
	}

	return Page[T]{
		Items:   matched[offset:end],
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Limit > 0 && opts.Offset+opts.Limit < total,
	}
}

// Get returns a clone of the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return rec.Clone(), true
}

// Find returns a clone of the first record (in insertion order) matching
// the predicate.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.order {
		if rec := c.items[id]; pred(rec) {
			return rec.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// Create stores a clone of the record, assigning an id if it has none,
// and returns the stored record. Creating a record whose id already exists
// overwrites the existing record in place (same insertion slot) - callers
// that need conflict semantics check before creating.
func (c *Collection[T]) Create(rec T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := rec.Clone()
	if stored.RecordID() == "" {
		stored = stored.WithID(c.ids.Generate())
	}

	id := stored.RecordID()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = stored

	return stored.Clone()
}

// Update applies mutate to a clone of the record and stores the result.
// The record id cannot be changed by mutate - it is restored afterwards.
// Returns the updated record, or false if no record has the given id.
func (c *Collection[T]) Update(id string, mutate func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}

	updated := rec.Clone()
	mutate(&updated)
	updated = updated.WithID(id)
	c.items[id] = updated

	return updated.Clone(), true
}

// Delete removes the record with the given id.
// Returns false if no record has the given id.
func (c *Collection[T]) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}

	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceAll discards the current contents and stores clones of the given
// records in slice order. Records without ids are assigned one.
//
// Only the scenario orchestrator performs bulk replacement - request
// handlers mutate single records.
func (c *Collection[T]) ReplaceAll(recs []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T, len(recs))
	c.order = c.order[:0]
	for _, rec := range recs {
		stored := rec.Clone()
		if stored.RecordID() == "" {
			stored = stored.WithID(c.ids.Generate())
		}
		id := stored.RecordID()
		if _, exists := c.items[id]; !exists {
			c.order = append(c.order, id)
		}
		c.items[id] = stored
	}
}

// Snapshot returns clones of all records in insertion order.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].Clone())
	}
	return out
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// FoldKey normalizes a string for case-insensitive sorting and matching:
// NFC normalization followed by lower-casing, so composed and decomposed
// forms of the same text sort together.
func FoldKey(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
