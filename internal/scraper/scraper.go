package scraper

import (
	"context"
)

// Provider is the uniform contract every metadata catalog implements.
type Provider interface {
	// Name returns the stable identifier used in result routing and logs.
	Name() string

	// RequiresAPIKey reports whether the catalog needs an API key.
	RequiresAPIKey() bool

	// Search queries the catalog. Providers return only the media types
	// they cover; a type outside the provider's scope is omitted from
	// the results rather than reported as an error.
	Search(ctx context.Context, query string, year *int) ([]SearchResult, error)

	// Details resolves the full metadata record for a search result.
	// Results of an unsupported type fail with a ConfigError.
	Details(ctx context.Context, result SearchResult) (*Details, error)

	// EpisodeDetails fetches metadata for one episode of a series.
	// Providers without episode data fail with a ConfigError.
	EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*EpisodeMetadata, error)
}

// SelectByType returns the first result whose media type equals want.
// Selection is strict: a movie item never matches a TV result and vice
// versa.
func SelectByType(results []SearchResult, want MediaType) (SearchResult, bool) {
	for _, result := range results {
		if result.Type == want {
			return result, true
		}
	}
	return SearchResult{}, false
}
