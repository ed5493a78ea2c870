package filters

import (
	"sync"

	"github.com/0x6d61/burrow/internal/httpresponse"
)

// Collection is the ordered, concurrency-safe set of active filters.
// Reads (ShouldFilter) are the hot path; writes (Add/Remove from the
// interactive menu) are rare — guarded by an RWMutex per spec.md §5.
type Collection struct {
	mu      sync.RWMutex
	filters []Filter
}

// New returns an empty Collection.
func New() *Collection { return &Collection{} }

// Add appends filter unless an equal filter is already present, returning
// whether it was actually added.
func (c *Collection) Add(f Filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.filters {
		if existing.Equal(f) {
			return false
		}
	}
	c.filters = append(c.filters, f)
	return true
}

// Remove drops the filters at the given indices (as seen by List) in a
// single pass, so every index refers to the list as it was before the call.
func (c *Collection) Remove(indices []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	toRemove := make(map[int]bool, len(indices))
	for _, i := range indices {
		toRemove[i] = true
	}

	kept := c.filters[:0:0]
	for i, f := range c.filters {
		if !toRemove[i] {
			kept = append(kept, f)
		}
	}
	c.filters = kept
}

// List returns a snapshot copy of the active filters, in insertion order.
func (c *Collection) List() []Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// ShouldFilter evaluates the pipeline in insertion order, short-circuiting
// on the first positive match.
func (c *Collection) ShouldFilter(r *httpresponse.Response) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.filters {
		if f.ShouldFilter(r) {
			return true
		}
	}
	return false
}

// Len returns the number of active filters.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.filters)
}
