package regtap

import (
	"context"
	"sync"

	"github.com/openvo/go-regtap/votable"
)

// QueryCache stores query results keyed by the exact query text.
// Registry records change slowly, so repeated searches in one process
// can be answered locally.
//
// Cached tables are shared between callers and must be treated as
// read-only.
type QueryCache interface {
	// Get returns the cached table for the query, a hit flag, and any
	// cache backend error.
	Get(ctx context.Context, query string) (*votable.Table, bool, error)

	// Put stores the table for the query.
	Put(ctx context.Context, query string, table *votable.Table) error
}

// Compile-time interface compliance checks
var _ QueryCache = NoopCache{}
var _ QueryCache = (*MemoryCache)(nil)

// NoopCache is a cache that discards all writes and always returns
// cache misses. Use it to disable caching.
type NoopCache struct{}

// Get always returns a cache miss.
func (NoopCache) Get(ctx context.Context, query string) (*votable.Table, bool, error) {
	return nil, false, nil
}

// Put discards the table and returns success.
func (NoopCache) Put(ctx context.Context, query string, table *votable.Table) error {
	return nil
}

// MemoryCache is a thread-safe in-memory query cache. It is the
// default cache for new clients.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*votable.Table
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*votable.Table),
	}
}

// Get retrieves a cached query result.
func (c *MemoryCache) Get(ctx context.Context, query string) (*votable.Table, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.items[query]
	if !ok {
		return nil, false, nil
	}
	return table, true, nil
}

// Put stores a query result in the cache.
func (c *MemoryCache) Put(ctx context.Context, query string, table *votable.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[query] = table
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*votable.Table)
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
