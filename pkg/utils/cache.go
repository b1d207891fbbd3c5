package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrExpired   = errors.New("cache entry expired")
)

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 10000

const janitorInterval = 5 * time.Minute

type cacheEntry struct {
	value      interface{}
	expiration time.Time
	accessed   atomic.Int64
}

// InMemoryCache is an in-memory cache with per-entry TTL and a capacity
// bound. When the bound is exceeded, entries with the oldest access time
// are evicted first (approximate LRU). Expired entries are dropped lazily
// on access and by a background janitor.
type InMemoryCache struct {
	entries  map[string]*cacheEntry
	mu       sync.RWMutex
	capacity int
	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryCache creates a new in-memory cache with the default capacity.
func NewInMemoryCache() *InMemoryCache {
	return NewInMemoryCacheWithCapacity(DefaultCapacity)
}

// NewInMemoryCacheWithCapacity creates a new in-memory cache holding at
// most capacity entries. A non-positive capacity falls back to the default.
func NewInMemoryCacheWithCapacity(capacity int) *InMemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	cache := &InMemoryCache{
		entries:  make(map[string]*cacheEntry),
		capacity: capacity,
		stop:     make(chan struct{}),
	}

	go cache.janitor()

	return cache
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, ErrCacheMiss
	}

	if time.Now().After(entry.expiration) {
		c.mu.Lock()
		// Re-check under the write lock; Set may have replaced the entry.
		if current, ok := c.entries[key]; ok && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrExpired
	}

	entry.accessed.Store(time.Now().UnixNano())
	return entry.value, nil
}

// Set stores a value in the cache with a TTL.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	entry := &cacheEntry{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
	entry.accessed.Store(time.Now().UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	for len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}

	return nil
}

// Delete removes a value from the cache.
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all values from the cache.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	return nil
}

// Len returns the number of live entries, expired ones included until swept.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stop terminates the background janitor.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// evictOldestLocked removes the entry with the oldest access time.
// Callers must hold the write lock.
func (c *InMemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAccess int64

	for key, entry := range c.entries {
		accessed := entry.accessed.Load()
		if oldestKey == "" || accessed < oldestAccess {
			oldestKey = key
			oldestAccess = accessed
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// janitor periodically removes expired entries.
func (c *InMemoryCache) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiration) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
