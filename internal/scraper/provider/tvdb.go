package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const tvdbBaseURL = "https://api4.thetvdb.com/v4"

// TVDB adapts TheTVDB v4 API. It covers TV series only and requires an
// API key, which is exchanged for a bearer token on first use.
type TVDB struct {
	base
	apiKey string

	mu    sync.RWMutex
	token string
}

// NewTVDB creates a TVDB adapter using the given API key.
func NewTVDB(apiKey string, limiter *scraper.Limiter, cache *scraper.ResponseCache) *TVDB {
	return &TVDB{
		base:   newBase("tvdb", limiter, cache),
		apiKey: apiKey,
	}
}

func (p *TVDB) Name() string { return p.name }

func (p *TVDB) RequiresAPIKey() bool { return true }

// Search queries the series index. TVDB carries no movie catalog here, so
// every result is a TV payload.
func (p *TVDB) Search(ctx context.Context, query string, year *int) ([]scraper.SearchResult, error) {
	series, err := p.searchSeries(ctx, query, year)
	if err != nil {
		return nil, err
	}

	results := make([]scraper.SearchResult, 0, len(series))
	for _, s := range series {
		results = append(results, scraper.NewTvResult(s))
	}
	return results, nil
}

// Details resolves the extended series record for a TV result.
func (p *TVDB) Details(ctx context.Context, result scraper.SearchResult) (*scraper.Details, error) {
	switch result.Type {
	case scraper.MediaTypeTV:
		return p.seriesDetails(ctx, result.TV.ID)
	case scraper.MediaTypeMovie:
		return nil, &scraper.ConfigError{Message: "TVDB does not support movies"}
	default:
		return nil, &scraper.ConfigError{Message: "TVDB does not support anime"}
	}
}

// EpisodeDetails loads the default season order and picks the requested
// episode number out of it.
func (p *TVDB) EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*scraper.EpisodeMetadata, error) {
	endpoint := "/series/" + url.PathEscape(seriesID) + "/episodes/default?season=" + strconv.Itoa(season)

	var resp tvdbEpisodesResponse
	if err := p.request(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	for _, ep := range resp.Data.Episodes {
		if ep.Number != episode {
			continue
		}
		return &scraper.EpisodeMetadata{
			ID:            strconv.FormatInt(ep.ID, 10),
			Name:          ep.Name,
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.Number,
			AirDate:       ep.Aired,
			Overview:      ep.Overview,
			StillPath:     ep.Image,
			Runtime:       ep.Runtime,
			Provider:      p.name,
		}, nil
	}

	return nil, &scraper.NotFoundError{Query: fmt.Sprintf("episode %d in season %d", episode, season)}
}

func (p *TVDB) searchSeries(ctx context.Context, query string, year *int) ([]scraper.TvSearchResult, error) {
	key := searchKey(p.name, scraper.MediaTypeTV, query, year)
	var cached []scraper.TvSearchResult
	if p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	endpoint := "/search?query=" + url.QueryEscape(query) + "&type=series"
	if year != nil {
		endpoint += "&year=" + strconv.Itoa(*year)
	}

	var resp tvdbSearchResponse
	if err := p.request(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	results := make([]scraper.TvSearchResult, 0, len(resp.Data))
	for _, s := range resp.Data {
		results = append(results, scraper.TvSearchResult{
			ID:           s.TvdbID,
			Name:         s.Name,
			OriginalName: s.OriginalName,
			FirstAirDate: s.FirstAired,
			PosterPath:   s.ImageURL,
			Overview:     s.Overview,
			Provider:     p.name,
		})
	}

	p.cache.SetWithTTL(ctx, key, results, longCacheTTL)
	return results, nil
}

func (p *TVDB) seriesDetails(ctx context.Context, id string) (*scraper.Details, error) {
	var resp tvdbSeriesResponse
	if err := p.request(ctx, "/series/"+url.PathEscape(id)+"/extended", &resp); err != nil {
		return nil, err
	}
	series := resp.Data

	genres := make([]string, 0, len(series.Genres))
	for _, g := range series.Genres {
		genres = append(genres, g.Name)
	}

	return scraper.NewTvDetails(scraper.TvDetails{
		ID:               strconv.FormatInt(series.ID, 10),
		Name:             series.Name,
		FirstAirDate:     series.FirstAired,
		LastAirDate:      series.LastAired,
		Overview:         series.Overview,
		PosterPath:       series.Image,
		VoteAverage:      series.Score,
		Genres:           genres,
		Status:           series.Status.Name,
		OriginalLanguage: series.OriginalLanguage,
		Provider:         p.name,
		ExternalIDs: scraper.ExternalIDs{
			TvdbID: strconv.FormatInt(series.ID, 10),
		},
	}), nil
}

// request performs an authenticated GET. An expired token, reported by a
// 401, is refreshed and the call retried exactly once.
func (p *TVDB) request(ctx context.Context, endpoint string, out interface{}) error {
	token, err := p.getToken(ctx)
	if err != nil {
		return err
	}

	err = p.getJSON(ctx, tvdbBaseURL+endpoint, bearerHeader(token), out)
	var apiErr *scraper.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		token, err = p.login(ctx)
		if err != nil {
			return err
		}
		return p.getJSON(ctx, tvdbBaseURL+endpoint, bearerHeader(token), out)
	}
	return err
}

// getToken returns the cached bearer token, logging in when none is held.
func (p *TVDB) getToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token != "" {
		return token, nil
	}
	return p.login(ctx)
}

func (p *TVDB) login(ctx context.Context) (string, error) {
	payload := map[string]string{"apikey": p.apiKey}

	var resp tvdbLoginResponse
	if err := p.postJSON(ctx, tvdbBaseURL+"/login", payload, nil, &resp); err != nil {
		return "", err
	}

	p.mu.Lock()
	p.token = resp.Data.Token
	p.mu.Unlock()

	return resp.Data.Token, nil
}

func bearerHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header
}

// TVDB API response types.

type tvdbLoginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type tvdbSearchResponse struct {
	Data []tvdbSearchResult `json:"data"`
}

type tvdbSearchResult struct {
	TvdbID       string `json:"tvdb_id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	FirstAired   string `json:"first_aired"`
	ImageURL     string `json:"image_url"`
	Overview     string `json:"overview"`
}

type tvdbSeriesResponse struct {
	Data tvdbSeriesDetails `json:"data"`
}

type tvdbSeriesDetails struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Overview         string      `json:"overview"`
	FirstAired       string      `json:"firstAired"`
	LastAired        string      `json:"lastAired"`
	Image            string      `json:"image"`
	Score            *float64    `json:"score"`
	Status           tvdbStatus  `json:"status"`
	OriginalLanguage string      `json:"originalLanguage"`
	Genres           []tvdbGenre `json:"genres"`
}

type tvdbStatus struct {
	Name string `json:"name"`
}

type tvdbGenre struct {
	Name string `json:"name"`
}

type tvdbEpisodesResponse struct {
	Data struct {
		Episodes []tvdbEpisode `json:"episodes"`
	} `json:"data"`
}

type tvdbEpisode struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"seasonNumber"`
	Number       int    `json:"number"`
	Aired        string `json:"aired"`
	Overview     string `json:"overview"`
	Image        string `json:"image"`
	Runtime      *int   `json:"runtime"`
}
