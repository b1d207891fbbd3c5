package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const tmdbMovieSearchBody = `{
	"results": [{
		"id": 329865,
		"title": "Arrival",
		"original_title": "Arrival",
		"release_date": "2016-11-10",
		"poster_path": "/poster.jpg",
		"overview": "A linguist works with the military.",
		"vote_average": 7.6
	}]
}`

const tmdbMovieDetailsBody = `{
	"id": 329865,
	"title": "Arrival",
	"release_date": "2016-11-10",
	"runtime": 116,
	"overview": "A linguist works with the military.",
	"poster_path": "/poster.jpg",
	"backdrop_path": "/backdrop.jpg",
	"vote_average": 7.6,
	"vote_count": 15000,
	"genres": [{"name": "Drama"}, {"name": "Science Fiction"}],
	"original_language": "en",
	"external_ids": {"imdb_id": "tt2543164"}
}`

func TestTMDBSearchQueriesBothIndexes(t *testing.T) {
	limiter, cache, stop := testDeps()
	defer stop()
	tmdb := NewTMDB("test-key", limiter, cache)

	var paths []string
	stubTransport(&tmdb.base, func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.Path)
		assert.Equal(t, "test-key", req.URL.Query().Get("api_key"))
		assert.Equal(t, "Ayiah/0.1.0", req.Header.Get("User-Agent"))

		if req.URL.Path == "/3/search/movie" {
			return jsonResponse(req, http.StatusOK, tmdbMovieSearchBody), nil
		}
		return jsonResponse(req, http.StatusOK, `{"results": []}`), nil
	})

	year := 2016
	results, err := tmdb.Search(context.Background(), "Arrival", &year)

	require.NoError(t, err)
	assert.Equal(t, []string{"/3/search/movie", "/3/search/tv"}, paths)
	require.Len(t, results, 1)

	require.Equal(t, scraper.MediaTypeMovie, results[0].Type)
	movie := results[0].Movie
	assert.Equal(t, "329865", movie.ID)
	assert.Equal(t, "Arrival", movie.Title)
	assert.Equal(t, "tmdb", movie.Provider)
	require.NotNil(t, movie.Year)
	assert.Equal(t, 2016, *movie.Year)
	// Relative image paths gain the CDN prefix and a size token.
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", movie.PosterPath)
}

func TestTMDBSearchUsesCache(t *testing.T) {
	limiter, cache, stop := testDeps()
	defer stop()
	tmdb := NewTMDB("test-key", limiter, cache)

	calls := 0
	stubTransport(&tmdb.base, func(req *http.Request) (*http.Response, error) {
		calls++
		if req.URL.Path == "/3/search/movie" {
			return jsonResponse(req, http.StatusOK, tmdbMovieSearchBody), nil
		}
		return jsonResponse(req, http.StatusOK, `{"results": []}`), nil
	})

	ctx := context.Background()
	first, err := tmdb.Search(ctx, "Arrival", nil)
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	second, err := tmdb.Search(ctx, "Arrival", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "second search must be served from cache")
	assert.Equal(t, first, second)
}

func TestTMDBMovieDetails(t *testing.T) {
	limiter, cache, stop := testDeps()
	defer stop()
	tmdb := NewTMDB("test-key", limiter, cache)

	stubTransport(&tmdb.base, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/3/movie/329865", req.URL.Path)
		assert.Equal(t, "external_ids", req.URL.Query().Get("append_to_response"))
		return jsonResponse(req, http.StatusOK, tmdbMovieDetailsBody), nil
	})

	details, err := tmdb.Details(context.Background(),
		scraper.NewMovieResult(scraper.MovieSearchResult{ID: "329865", Provider: "tmdb"}))

	require.NoError(t, err)
	require.Equal(t, scraper.MediaTypeMovie, details.Type)
	movie := details.Movie
	assert.Equal(t, "Arrival", movie.Title)
	assert.Equal(t, "2016-11-10", movie.ReleaseDate)
	require.NotNil(t, movie.Runtime)
	assert.Equal(t, 116, *movie.Runtime)
	assert.Equal(t, []string{"Drama", "Science Fiction"}, movie.Genres)
	assert.Equal(t, "tt2543164", movie.ExternalIDs.ImdbID)
	assert.Equal(t, "329865", movie.ExternalIDs.TmdbID)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/backdrop.jpg", movie.BackdropPath)
}

func TestTMDBDetailsRejectsAnime(t *testing.T) {
	limiter, cache, stop := testDeps()
	defer stop()
	tmdb := NewTMDB("test-key", limiter, cache)

	_, err := tmdb.Details(context.Background(),
		scraper.NewAnimeResult(scraper.AnimeSearchResult{ID: "1", Provider: "tmdb"}))

	require.Error(t, err)
	assert.True(t, scraper.IsConfig(err))
}

func TestTMDBMapsRateLimitResponse(t *testing.T) {
	limiter, cache, stop := testDeps()
	defer stop()
	tmdb := NewTMDB("test-key", limiter, cache)

	stubTransport(&tmdb.base, func(req *http.Request) (*http.Response, error) {
		resp := jsonResponse(req, http.StatusTooManyRequests, `{}`)
		resp.Header.Set("Retry-After", "7")
		return resp, nil
	})

	_, err := tmdb.Details(context.Background(),
		scraper.NewMovieResult(scraper.MovieSearchResult{ID: "1", Provider: "tmdb"}))

	require.Error(t, err)
	assert.True(t, scraper.IsRateLimit(err))
}
