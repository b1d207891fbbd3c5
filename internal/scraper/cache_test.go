package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayiahmedia/ayiah/pkg/utils"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	store := utils.NewInMemoryCache()
	defer store.Stop()
	cache := NewResponseCache(store, time.Minute)

	ctx := context.Background()
	key := CacheKey{Provider: "tmdb", Kind: "movie", Query: "arrival"}
	results := []MovieSearchResult{{ID: "329865", Title: "Arrival", Provider: "tmdb"}}

	cache.Set(ctx, key, results)

	var loaded []MovieSearchResult
	assert.True(t, cache.Get(ctx, key, &loaded))
	assert.Equal(t, results, loaded)
}

func TestResponseCacheMiss(t *testing.T) {
	store := utils.NewInMemoryCache()
	defer store.Stop()
	cache := NewResponseCache(store, time.Minute)

	ctx := context.Background()

	var loaded []MovieSearchResult
	assert.False(t, cache.Get(ctx, CacheKey{Provider: "tmdb", Kind: "movie", Query: "nothing"}, &loaded))
	assert.Empty(t, loaded)
}

func TestResponseCacheExpiredLooksLikeMiss(t *testing.T) {
	store := utils.NewInMemoryCache()
	defer store.Stop()
	cache := NewResponseCache(store, time.Minute)

	ctx := context.Background()
	key := CacheKey{Provider: "tvdb", Kind: "tv", Query: "expanse"}

	cache.SetWithTTL(ctx, key, []TvSearchResult{{ID: "1", Name: "The Expanse"}}, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	var loaded []TvSearchResult
	assert.False(t, cache.Get(ctx, key, &loaded))
}

func TestResponseCacheInvalidate(t *testing.T) {
	store := utils.NewInMemoryCache()
	defer store.Stop()
	cache := NewResponseCache(store, time.Minute)

	ctx := context.Background()
	key := CacheKey{Provider: "anilist", Kind: "anime", Query: "frieren"}
	cache.Set(ctx, key, []AnimeSearchResult{{ID: "154587"}})

	cache.Invalidate(ctx, key)

	var loaded []AnimeSearchResult
	assert.False(t, cache.Get(ctx, key, &loaded))
}

func TestCacheKeyString(t *testing.T) {
	key := CacheKey{Provider: "tmdb", Kind: "movie", Query: "arrival (2016)"}
	assert.Equal(t, "tmdb:movie:arrival (2016)", key.String())
}
