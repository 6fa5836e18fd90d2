package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
)

type memoryEntry struct {
	value     float64
	expiresAt time.Time
	storedAt  time.Time
}

// MemoryCache is the in-process QuoteCache used in non-production
// environments and in tests. Same freshness semantics as the Redis backend.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	retention time.Duration
	now       func() time.Time
}

// NewMemoryCache creates an in-process cache with the given retention.
func NewMemoryCache(retention time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:   make(map[string]memoryEntry),
		retention: retention,
		now:       time.Now,
	}
}

// Get returns the cached value when a fresh entry exists.
func (c *MemoryCache) Get(_ context.Context, key string) (float64, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return 0, false
	}
	return e.value, true
}

// GetStale returns the last stored value while it is within retention.
func (c *MemoryCache) GetStale(_ context.Context, key string) (float64, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.storedAt.Add(c.retention)) {
		return 0, false
	}
	return e.value, true
}

// Set stores a value with the given freshness window.
func (c *MemoryCache) Set(_ context.Context, key string, value float64, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}
	c.mu.Unlock()
}

// Available always reports true for the in-process cache.
func (c *MemoryCache) Available() bool { return true }

var _ interfaces.QuoteCache = (*MemoryCache)(nil)
