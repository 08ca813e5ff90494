package regtap

import (
	"context"
	"errors"
	"testing"

	"github.com/openvo/go-regtap/votable"
)

// TestMemoryCache tests store, lookup, and clear
func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	table := &votable.Table{}

	if _, ok, _ := cache.Get(ctx, "q1"); ok {
		t.Error("empty cache should miss")
	}

	if err := cache.Put(ctx, "q1", table); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok, err := cache.Get(ctx, "q1")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v, %v), want hit", got, ok, err)
	}
	if got != table {
		t.Error("Get should return the stored table")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", cache.Len())
	}
	if _, ok, _ := cache.Get(ctx, "q1"); ok {
		t.Error("cleared cache should miss")
	}
}

// TestNoopCache tests that nothing is retained
func TestNoopCache(t *testing.T) {
	cache := NoopCache{}
	ctx := context.Background()

	if err := cache.Put(ctx, "q1", &votable.Table{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, err := cache.Get(ctx, "q1"); ok || err != nil {
		t.Error("NoopCache should always miss cleanly")
	}
}

// TestCountingCache tests traffic accounting
func TestCountingCache(t *testing.T) {
	cache := NewCountingCache(nil)
	ctx := context.Background()

	_, _, _ = cache.Get(ctx, "q1")
	_ = cache.Put(ctx, "q1", &votable.Table{})
	_, _, _ = cache.Get(ctx, "q1")

	if cache.Gets() != 2 {
		t.Errorf("Gets = %d, want 2", cache.Gets())
	}
	if cache.Hits() != 1 {
		t.Errorf("Hits = %d, want 1", cache.Hits())
	}
	if cache.Puts() != 1 {
		t.Errorf("Puts = %d, want 1", cache.Puts())
	}
}

// TestFailingCache tests the configured errors
func TestFailingCache(t *testing.T) {
	getErr := errors.New("backend down")
	cache := NewFailingCache(getErr, nil)
	ctx := context.Background()

	if _, _, err := cache.Get(ctx, "q1"); !errors.Is(err, getErr) {
		t.Errorf("Get error = %v, want %v", err, getErr)
	}
	if err := cache.Put(ctx, "q1", nil); err == nil {
		t.Error("Put should fail with the default error")
	}
}
