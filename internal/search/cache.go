package search

import (
	"sync"
	"time"

	"github.com/bambuco/boa/internal/resource"
)

// entry holds one cached result set, keyed by the exact query string.
type entry struct {
	timestamp time.Time
	results   []resource.Resource
}

// Cache is the in-memory query cache. An entry is reusable only while
// now - timestamp < life; staleness is advisory and checked lazily on the
// next identical query, there is no background eviction.
type Cache struct {
	mu      sync.Mutex
	life    time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewCache creates a query cache with the given entry lifetime.
func NewCache(life time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		life:    life,
		entries: make(map[string]*entry),
		now:     now,
	}
}

// Lookup returns the cached results for a query when the entry is still
// fresh. A stale entry is left in place; it will be overwritten by the
// next Begin for the same query.
func (c *Cache) Lookup(q string) ([]resource.Resource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[q]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.timestamp) >= c.life {
		return nil, false
	}
	return e.results, true
}

// Begin stamps a fresh entry for a query at request-issue time, replacing
// any stale one. The entry starts empty and is filled on response arrival.
func (c *Cache) Begin(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[q] = &entry{timestamp: c.now()}
}

// Fill stores the results for a previously begun query. Filling a query
// that was never begun is a no-op.
func (c *Cache) Fill(q string, results []resource.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[q]; ok {
		e.results = results
	}
}
