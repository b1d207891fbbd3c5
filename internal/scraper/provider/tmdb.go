package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const (
	tmdbBaseURL  = "https://api.themoviedb.org/3"
	tmdbImageURL = "https://image.tmdb.org/t/p/"
)

// TMDB adapts The Movie Database v3 API. It covers movies and TV series
// and requires an API key.
type TMDB struct {
	base
	apiKey string
}

// NewTMDB creates a TMDB adapter using the given API key.
func NewTMDB(apiKey string, limiter *scraper.Limiter, cache *scraper.ResponseCache) *TMDB {
	return &TMDB{
		base:   newBase("tmdb", limiter, cache),
		apiKey: apiKey,
	}
}

func (p *TMDB) Name() string { return p.name }

func (p *TMDB) RequiresAPIKey() bool { return true }

// Search queries the movie and TV indexes and returns both result sets.
func (p *TMDB) Search(ctx context.Context, query string, year *int) ([]scraper.SearchResult, error) {
	movies, err := p.searchMovies(ctx, query, year)
	if err != nil {
		return nil, err
	}
	series, err := p.searchTV(ctx, query, year)
	if err != nil {
		return nil, err
	}

	results := make([]scraper.SearchResult, 0, len(movies)+len(series))
	for _, m := range movies {
		results = append(results, scraper.NewMovieResult(m))
	}
	for _, s := range series {
		results = append(results, scraper.NewTvResult(s))
	}
	return results, nil
}

// Details resolves the full record for a movie or TV result.
func (p *TMDB) Details(ctx context.Context, result scraper.SearchResult) (*scraper.Details, error) {
	switch result.Type {
	case scraper.MediaTypeMovie:
		return p.movieDetails(ctx, result.Movie.ID)
	case scraper.MediaTypeTV:
		return p.tvDetails(ctx, result.TV.ID)
	default:
		return nil, &scraper.ConfigError{Message: "TMDB does not support anime"}
	}
}

// EpisodeDetails fetches one episode of a TV series.
func (p *TMDB) EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*scraper.EpisodeMetadata, error) {
	endpoint := tmdbBaseURL + "/tv/" + url.PathEscape(seriesID) +
		"/season/" + strconv.Itoa(season) + "/episode/" + strconv.Itoa(episode) +
		"?api_key=" + url.QueryEscape(p.apiKey)

	var ep tmdbEpisode
	if err := p.getJSON(ctx, endpoint, nil, &ep); err != nil {
		return nil, err
	}

	return &scraper.EpisodeMetadata{
		ID:            strconv.Itoa(ep.ID),
		Name:          ep.Name,
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		AirDate:       ep.AirDate,
		Overview:      ep.Overview,
		StillPath:     tmdbImage(ep.StillPath, "w500"),
		Runtime:       ep.Runtime,
		VoteAverage:   ep.VoteAverage,
		Provider:      p.name,
	}, nil
}

func (p *TMDB) searchMovies(ctx context.Context, query string, year *int) ([]scraper.MovieSearchResult, error) {
	key := searchKey(p.name, scraper.MediaTypeMovie, query, year)
	var cached []scraper.MovieSearchResult
	if p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("query", query)
	if year != nil {
		params.Set("year", strconv.Itoa(*year))
	}

	var page tmdbMoviePage
	if err := p.getJSON(ctx, tmdbBaseURL+"/search/movie?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}

	results := make([]scraper.MovieSearchResult, 0, len(page.Results))
	for _, m := range page.Results {
		results = append(results, scraper.MovieSearchResult{
			ID:            strconv.Itoa(m.ID),
			Title:         m.Title,
			OriginalTitle: m.OriginalTitle,
			Year:          yearOf(m.ReleaseDate),
			PosterPath:    tmdbImage(m.PosterPath, "w500"),
			Overview:      m.Overview,
			VoteAverage:   m.VoteAverage,
			Provider:      p.name,
		})
	}

	p.cache.Set(ctx, key, results)
	return results, nil
}

func (p *TMDB) searchTV(ctx context.Context, query string, year *int) ([]scraper.TvSearchResult, error) {
	key := searchKey(p.name, scraper.MediaTypeTV, query, year)
	var cached []scraper.TvSearchResult
	if p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("query", query)
	if year != nil {
		params.Set("first_air_date_year", strconv.Itoa(*year))
	}

	var page tmdbTVPage
	if err := p.getJSON(ctx, tmdbBaseURL+"/search/tv?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}

	results := make([]scraper.TvSearchResult, 0, len(page.Results))
	for _, s := range page.Results {
		results = append(results, scraper.TvSearchResult{
			ID:           strconv.Itoa(s.ID),
			Name:         s.Name,
			OriginalName: s.OriginalName,
			FirstAirDate: s.FirstAirDate,
			PosterPath:   tmdbImage(s.PosterPath, "w500"),
			Overview:     s.Overview,
			VoteAverage:  s.VoteAverage,
			Provider:     p.name,
		})
	}

	p.cache.Set(ctx, key, results)
	return results, nil
}

func (p *TMDB) movieDetails(ctx context.Context, id string) (*scraper.Details, error) {
	endpoint := tmdbBaseURL + "/movie/" + url.PathEscape(id) +
		"?api_key=" + url.QueryEscape(p.apiKey) + "&append_to_response=external_ids"

	var movie tmdbMovieDetails
	if err := p.getJSON(ctx, endpoint, nil, &movie); err != nil {
		return nil, err
	}

	external := scraper.ExternalIDs{
		ImdbID: movie.ExternalIDs.ImdbID,
		TmdbID: strconv.Itoa(movie.ID),
	}

	return scraper.NewMovieDetails(scraper.MovieDetails{
		ID:                  strconv.Itoa(movie.ID),
		Title:               movie.Title,
		OriginalTitle:       movie.OriginalTitle,
		ReleaseDate:         movie.ReleaseDate,
		Runtime:             movie.Runtime,
		Overview:            movie.Overview,
		PosterPath:          tmdbImage(movie.PosterPath, "w500"),
		BackdropPath:        tmdbImage(movie.BackdropPath, "original"),
		VoteAverage:         movie.VoteAverage,
		VoteCount:           movie.VoteCount,
		Genres:              namedList(movie.Genres),
		ProductionCompanies: namedList(movie.ProductionCompanies),
		ProductionCountries: namedList(movie.ProductionCountries),
		OriginalLanguage:    movie.OriginalLanguage,
		Provider:            p.name,
		ExternalIDs:         external,
	}), nil
}

func (p *TMDB) tvDetails(ctx context.Context, id string) (*scraper.Details, error) {
	endpoint := tmdbBaseURL + "/tv/" + url.PathEscape(id) +
		"?api_key=" + url.QueryEscape(p.apiKey) + "&append_to_response=external_ids"

	var series tmdbTVDetails
	if err := p.getJSON(ctx, endpoint, nil, &series); err != nil {
		return nil, err
	}

	external := scraper.ExternalIDs{
		ImdbID: series.ExternalIDs.ImdbID,
		TmdbID: strconv.Itoa(series.ID),
	}
	if series.ExternalIDs.TvdbID != nil {
		external.TvdbID = strconv.Itoa(*series.ExternalIDs.TvdbID)
	}

	return scraper.NewTvDetails(scraper.TvDetails{
		ID:                  strconv.Itoa(series.ID),
		Name:                series.Name,
		OriginalName:        series.OriginalName,
		FirstAirDate:        series.FirstAirDate,
		LastAirDate:         series.LastAirDate,
		Overview:            series.Overview,
		PosterPath:          tmdbImage(series.PosterPath, "w500"),
		BackdropPath:        tmdbImage(series.BackdropPath, "original"),
		VoteAverage:         series.VoteAverage,
		VoteCount:           series.VoteCount,
		Genres:              namedList(series.Genres),
		NumberOfSeasons:     series.NumberOfSeasons,
		NumberOfEpisodes:    series.NumberOfEpisodes,
		EpisodeRunTime:      series.EpisodeRunTime,
		Status:              series.Status,
		OriginalLanguage:    series.OriginalLanguage,
		ProductionCompanies: namedList(series.ProductionCompanies),
		Provider:            p.name,
		ExternalIDs:         external,
	}), nil
}

// tmdbImage resolves a relative TMDB image path against the image CDN.
func tmdbImage(path, size string) string {
	if path == "" {
		return ""
	}
	return tmdbImageURL + size + path
}

type tmdbNamed struct {
	Name string `json:"name"`
}

func namedList(items []tmdbNamed) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

// TMDB API response types.

type tmdbMoviePage struct {
	Results []tmdbMovieResult `json:"results"`
}

type tmdbMovieResult struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	ReleaseDate   string   `json:"release_date"`
	PosterPath    string   `json:"poster_path"`
	Overview      string   `json:"overview"`
	VoteAverage   *float64 `json:"vote_average"`
}

type tmdbTVPage struct {
	Results []tmdbTVResult `json:"results"`
}

type tmdbTVResult struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	Overview     string   `json:"overview"`
	VoteAverage  *float64 `json:"vote_average"`
}

type tmdbExternalIDs struct {
	ImdbID string `json:"imdb_id"`
	TvdbID *int   `json:"tvdb_id"`
}

type tmdbMovieDetails struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	OriginalTitle       string          `json:"original_title"`
	ReleaseDate         string          `json:"release_date"`
	Runtime             *int            `json:"runtime"`
	Overview            string          `json:"overview"`
	PosterPath          string          `json:"poster_path"`
	BackdropPath        string          `json:"backdrop_path"`
	VoteAverage         *float64        `json:"vote_average"`
	VoteCount           *int            `json:"vote_count"`
	Genres              []tmdbNamed     `json:"genres"`
	ProductionCompanies []tmdbNamed     `json:"production_companies"`
	ProductionCountries []tmdbNamed     `json:"production_countries"`
	OriginalLanguage    string          `json:"original_language"`
	ExternalIDs         tmdbExternalIDs `json:"external_ids"`
}

type tmdbTVDetails struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	OriginalName        string          `json:"original_name"`
	FirstAirDate        string          `json:"first_air_date"`
	LastAirDate         string          `json:"last_air_date"`
	Overview            string          `json:"overview"`
	PosterPath          string          `json:"poster_path"`
	BackdropPath        string          `json:"backdrop_path"`
	VoteAverage         *float64        `json:"vote_average"`
	VoteCount           *int            `json:"vote_count"`
	Genres              []tmdbNamed     `json:"genres"`
	NumberOfSeasons     *int            `json:"number_of_seasons"`
	NumberOfEpisodes    *int            `json:"number_of_episodes"`
	EpisodeRunTime      []int           `json:"episode_run_time"`
	Status              string          `json:"status"`
	OriginalLanguage    string          `json:"original_language"`
	ProductionCompanies []tmdbNamed     `json:"production_companies"`
	ExternalIDs         tmdbExternalIDs `json:"external_ids"`
}

type tmdbEpisode struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	SeasonNumber  int      `json:"season_number"`
	EpisodeNumber int      `json:"episode_number"`
	AirDate       string   `json:"air_date"`
	Overview      string   `json:"overview"`
	StillPath     string   `json:"still_path"`
	Runtime       *int     `json:"runtime"`
	VoteAverage   *float64 `json:"vote_average"`
}
