package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// DefaultCacheTTL is how long provider responses stay cached.
const DefaultCacheTTL = time.Hour

// CacheKey identifies one cached provider response.
type CacheKey struct {
	Provider string
	Kind     string
	Query    string
}

// String flattens the key for the backing store.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Provider, k.Kind, k.Query)
}

// ResponseCache stores serialized provider responses in a shared cache.
// Its operations never fail: a miss, an expired entry, and a codec error
// all look the same to the caller.
type ResponseCache struct {
	cache interfaces.Cache
	ttl   time.Duration
}

// NewResponseCache wraps the given cache with response serialization.
// A non-positive TTL falls back to the default.
func NewResponseCache(cache interfaces.Cache, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Get loads a cached response into out. It reports whether out was filled.
func (c *ResponseCache) Get(ctx context.Context, key CacheKey, out interface{}) bool {
	raw, err := c.cache.Get(ctx, key.String())
	if err != nil {
		return false
	}
	blob, ok := raw.([]byte)
	if !ok {
		return false
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return false
	}
	return true
}

// Set stores a response under the key with the cache's default TTL.
func (c *ResponseCache) Set(ctx context.Context, key CacheKey, value interface{}) {
	c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a response under the key with an explicit TTL.
// Serialization failures drop the entry silently.
func (c *ResponseCache) SetWithTTL(ctx context.Context, key CacheKey, value interface{}, ttl time.Duration) {
	blob, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key.String(), blob, ttl)
}

// Invalidate removes one cached response.
func (c *ResponseCache) Invalidate(ctx context.Context, key CacheKey) {
	_ = c.cache.Delete(ctx, key.String())
}

// Clear removes every cached response.
func (c *ResponseCache) Clear(ctx context.Context) {
	_ = c.cache.Clear(ctx)
}
