package regtap

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/openvo/go-regtap/votable"
)

// Compile-time interface compliance checks
var _ QueryCache = (*FailingCache)(nil)
var _ QueryCache = (*CountingCache)(nil)

// FailingCache is a cache that always returns errors.
// Useful for testing error handling paths.
type FailingCache struct {
	GetErr error
	PutErr error
}

// NewFailingCache creates a cache that fails with the given errors.
func NewFailingCache(getErr, putErr error) *FailingCache {
	if getErr == nil {
		getErr = errors.New("cache get failed")
	}
	if putErr == nil {
		putErr = errors.New("cache put failed")
	}
	return &FailingCache{GetErr: getErr, PutErr: putErr}
}

// Get always returns an error.
func (c *FailingCache) Get(ctx context.Context, query string) (*votable.Table, bool, error) {
	return nil, false, c.GetErr
}

// Put always returns an error.
func (c *FailingCache) Put(ctx context.Context, query string, table *votable.Table) error {
	return c.PutErr
}

// CountingCache wraps another cache and counts operations.
// Useful for asserting cache traffic in tests.
type CountingCache struct {
	Wrapped QueryCache

	gets atomic.Int64
	hits atomic.Int64
	puts atomic.Int64
}

// NewCountingCache wraps the given cache; a nil cache counts against
// an in-memory one.
func NewCountingCache(wrapped QueryCache) *CountingCache {
	if wrapped == nil {
		wrapped = NewMemoryCache()
	}
	return &CountingCache{Wrapped: wrapped}
}

// Get delegates to the wrapped cache and counts the lookup.
func (c *CountingCache) Get(ctx context.Context, query string) (*votable.Table, bool, error) {
	c.gets.Add(1)
	table, ok, err := c.Wrapped.Get(ctx, query)
	if ok {
		c.hits.Add(1)
	}
	return table, ok, err
}

// Put delegates to the wrapped cache and counts the store.
func (c *CountingCache) Put(ctx context.Context, query string, table *votable.Table) error {
	c.puts.Add(1)
	return c.Wrapped.Put(ctx, query, table)
}

// Gets returns the number of lookups.
func (c *CountingCache) Gets() int64 { return c.gets.Load() }

// Hits returns the number of lookups that found an entry.
func (c *CountingCache) Hits() int64 { return c.hits.Load() }

// Puts returns the number of stores.
func (c *CountingCache) Puts() int64 { return c.puts.Load() }
