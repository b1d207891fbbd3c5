package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/pkg/logger"
)

// fakeProvider is a scripted Provider for registry tests.
type fakeProvider struct {
	name    string
	results []SearchResult
	err     error

	searchCalls  int
	detailsCalls int
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) RequiresAPIKey() bool { return false }

func (f *fakeProvider) Search(ctx context.Context, query string, year *int) ([]SearchResult, error) {
	f.searchCalls++
	return f.results, f.err
}

func (f *fakeProvider) Details(ctx context.Context, result SearchResult) (*Details, error) {
	f.detailsCalls++
	if f.err != nil {
		return nil, f.err
	}
	return NewMovieDetails(MovieDetails{ID: result.ID(), Provider: f.name}), nil
}

func (f *fakeProvider) EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*EpisodeMetadata, error) {
	return &EpisodeMetadata{SeasonNumber: season, EpisodeNumber: episode, Provider: f.name}, nil
}

func movieResult(provider, id, title string) SearchResult {
	return NewMovieResult(MovieSearchResult{ID: id, Title: title, Provider: provider})
}

func tvResult(provider, id, name string) SearchResult {
	return NewTvResult(TvSearchResult{ID: id, Name: name, Provider: provider})
}

func TestManagerSearchMergesAllProviders(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	first := &fakeProvider{name: "tmdb", results: []SearchResult{movieResult("tmdb", "1", "Arrival")}}
	second := &fakeProvider{name: "tvdb", results: []SearchResult{tvResult("tvdb", "2", "The Expanse")}}
	manager.Register(first)
	manager.Register(second)

	results, err := manager.Search(context.Background(), "anything", nil)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, first.searchCalls)
	assert.Equal(t, 1, second.searchCalls)

	// Merged in registration order regardless of completion order.
	assert.Equal(t, "tmdb", results[0].Provider())
	assert.Equal(t, "tvdb", results[1].Provider())
}

func TestManagerSearchSkipsFailingProvider(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	manager.Register(&fakeProvider{name: "tmdb", err: &APIError{Status: 500, Message: "boom"}})
	manager.Register(&fakeProvider{name: "tvdb", results: []SearchResult{tvResult("tvdb", "2", "The Expanse")}})

	results, err := manager.Search(context.Background(), "expanse", nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tvdb", results[0].Provider())
}

func TestManagerSearchAllEmptyIsNotFound(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	manager.Register(&fakeProvider{name: "tmdb"})
	manager.Register(&fakeProvider{name: "tvdb", err: &APIError{Status: 503, Message: "down"}})

	_, err := manager.Search(context.Background(), "nothing", nil)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestManagerSearchWithoutProviders(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())

	_, err := manager.Search(context.Background(), "query", nil)

	require.Error(t, err)
	assert.True(t, IsConfig(err))
}

func TestManagerDetailsRoutesToOriginatingProvider(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	tmdb := &fakeProvider{name: "tmdb"}
	tvdb := &fakeProvider{name: "tvdb"}
	manager.Register(tmdb)
	manager.Register(tvdb)

	details, err := manager.Details(context.Background(), movieResult("tvdb", "42", "Some Film"))

	require.NoError(t, err)
	assert.Equal(t, "tvdb", details.Provider())
	assert.Equal(t, 0, tmdb.detailsCalls)
	assert.Equal(t, 1, tvdb.detailsCalls)
}

func TestManagerDetailsUnknownProvider(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	manager.Register(&fakeProvider{name: "tmdb"})

	_, err := manager.Details(context.Background(), movieResult("ghost", "1", "Nope"))

	require.Error(t, err)
	assert.True(t, IsConfig(err))
}

func TestManagerRegisterReplacesByName(t *testing.T) {
	manager := NewManager(logger.NewNoopLogger())
	manager.Register(&fakeProvider{name: "tmdb"})
	replacement := &fakeProvider{name: "tmdb", results: []SearchResult{movieResult("tmdb", "9", "New")}}
	manager.Register(replacement)

	providers := manager.Providers()
	require.Len(t, providers, 1)

	results, err := manager.Search(context.Background(), "new", nil)
	require.NoError(t, err)
	assert.Equal(t, "9", results[0].ID())
}

func TestSelectByTypeIsStrict(t *testing.T) {
	results := []SearchResult{
		tvResult("tmdb", "10", "Arrival: The Series"),
		movieResult("tmdb", "329865", "Arrival"),
		movieResult("tvdb", "7", "Arrival Again"),
	}

	// The first result of the wanted type wins; kinds never cross.
	picked, ok := SelectByType(results, MediaTypeMovie)
	require.True(t, ok)
	assert.Equal(t, "329865", picked.ID())

	picked, ok = SelectByType(results, MediaTypeTV)
	require.True(t, ok)
	assert.Equal(t, "10", picked.ID())

	_, ok = SelectByType(results, MediaTypeAnime)
	assert.False(t, ok)
}
