package collector

import (
	"sync"
	"time"
)

// Cache is a keyed in-memory response cache with a fixed TTL. It replaces
// the process-wide HTTP cache the collectors historically shared: ownership
// is explicit (whoever constructs it, wires it) and the core never sees it.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data    any
	expires time.Time
}

// DefaultCacheTTL mirrors the one-day expiry the data sources tolerate.
const DefaultCacheTTL = 24 * time.Hour

// NewCache creates a cache with the given TTL, defaulting when ttl <= 0.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.data, true
}

// Set stores a value under key with the cache's TTL.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of entries, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
