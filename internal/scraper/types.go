package scraper

import (
	"fmt"
	"strings"
)

// MediaType discriminates search results and details across providers.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeAnime MediaType = "anime"
)

// ParseMediaType parses a media type from its string form.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(s)) {
	case MediaTypeMovie:
		return MediaTypeMovie, nil
	case MediaTypeTV:
		return MediaTypeTV, nil
	case MediaTypeAnime:
		return MediaTypeAnime, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// SearchResult is one match returned by a provider search. Type selects
// which payload is set; the other two are nil.
type SearchResult struct {
	Type  MediaType          `json:"media_type"`
	Movie *MovieSearchResult `json:"movie,omitempty"`
	TV    *TvSearchResult    `json:"tv,omitempty"`
	Anime *AnimeSearchResult `json:"anime,omitempty"`
}

// NewMovieResult wraps a movie payload in a SearchResult.
func NewMovieResult(m MovieSearchResult) SearchResult {
	return SearchResult{Type: MediaTypeMovie, Movie: &m}
}

// NewTvResult wraps a TV payload in a SearchResult.
func NewTvResult(t TvSearchResult) SearchResult {
	return SearchResult{Type: MediaTypeTV, TV: &t}
}

// NewAnimeResult wraps an anime payload in a SearchResult.
func NewAnimeResult(a AnimeSearchResult) SearchResult {
	return SearchResult{Type: MediaTypeAnime, Anime: &a}
}

// ID returns the provider-specific identifier of the result.
func (r SearchResult) ID() string {
	switch r.Type {
	case MediaTypeMovie:
		return r.Movie.ID
	case MediaTypeTV:
		return r.TV.ID
	case MediaTypeAnime:
		return r.Anime.ID
	}
	return ""
}

// Title returns the display title of the result.
func (r SearchResult) Title() string {
	switch r.Type {
	case MediaTypeMovie:
		return r.Movie.Title
	case MediaTypeTV:
		return r.TV.Name
	case MediaTypeAnime:
		return r.Anime.Title
	}
	return ""
}

// Provider returns the name of the provider that produced the result.
func (r SearchResult) Provider() string {
	switch r.Type {
	case MediaTypeMovie:
		return r.Movie.Provider
	case MediaTypeTV:
		return r.TV.Provider
	case MediaTypeAnime:
		return r.Anime.Provider
	}
	return ""
}

// Details is the full metadata record for one search result. Type selects
// which payload is set.
type Details struct {
	Type  MediaType     `json:"media_type"`
	Movie *MovieDetails `json:"movie,omitempty"`
	TV    *TvDetails    `json:"tv,omitempty"`
	Anime *AnimeDetails `json:"anime,omitempty"`
}

// NewMovieDetails wraps a movie payload in a Details value.
func NewMovieDetails(m MovieDetails) *Details {
	return &Details{Type: MediaTypeMovie, Movie: &m}
}

// NewTvDetails wraps a TV payload in a Details value.
func NewTvDetails(t TvDetails) *Details {
	return &Details{Type: MediaTypeTV, TV: &t}
}

// NewAnimeDetails wraps an anime payload in a Details value.
func NewAnimeDetails(a AnimeDetails) *Details {
	return &Details{Type: MediaTypeAnime, Anime: &a}
}

// ID returns the provider-specific identifier of the details record.
func (d *Details) ID() string {
	switch d.Type {
	case MediaTypeMovie:
		return d.Movie.ID
	case MediaTypeTV:
		return d.TV.ID
	case MediaTypeAnime:
		return d.Anime.ID
	}
	return ""
}

// Title returns the display title of the details record.
func (d *Details) Title() string {
	switch d.Type {
	case MediaTypeMovie:
		return d.Movie.Title
	case MediaTypeTV:
		return d.TV.Name
	case MediaTypeAnime:
		return d.Anime.Title
	}
	return ""
}

// Provider returns the name of the provider that produced the record.
func (d *Details) Provider() string {
	switch d.Type {
	case MediaTypeMovie:
		return d.Movie.Provider
	case MediaTypeTV:
		return d.TV.Provider
	case MediaTypeAnime:
		return d.Anime.Provider
	}
	return ""
}

// ExternalIDs returns the external id record of the details payload.
func (d *Details) ExternalIDs() ExternalIDs {
	switch d.Type {
	case MediaTypeMovie:
		return d.Movie.ExternalIDs
	case MediaTypeTV:
		return d.TV.ExternalIDs
	case MediaTypeAnime:
		return d.Anime.ExternalIDs
	}
	return ExternalIDs{}
}

// MovieSearchResult is a movie match from one provider.
type MovieSearchResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Year          *int     `json:"year,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	Provider      string   `json:"provider"`
}

// MovieDetails is the full metadata record for a movie.
type MovieDetails struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	OriginalTitle       string      `json:"original_title,omitempty"`
	ReleaseDate         string      `json:"release_date,omitempty"`
	Runtime             *int        `json:"runtime,omitempty"`
	Overview            string      `json:"overview,omitempty"`
	PosterPath          string      `json:"poster_path,omitempty"`
	BackdropPath        string      `json:"backdrop_path,omitempty"`
	VoteAverage         *float64    `json:"vote_average,omitempty"`
	VoteCount           *int        `json:"vote_count,omitempty"`
	Genres              []string    `json:"genres"`
	ProductionCompanies []string    `json:"production_companies,omitempty"`
	ProductionCountries []string    `json:"production_countries,omitempty"`
	OriginalLanguage    string      `json:"original_language,omitempty"`
	Provider            string      `json:"provider"`
	ExternalIDs         ExternalIDs `json:"external_ids"`
}

// TvSearchResult is a TV series match from one provider.
type TvSearchResult struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name,omitempty"`
	FirstAirDate string   `json:"first_air_date,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
	Provider     string   `json:"provider"`
}

// TvDetails is the full metadata record for a TV series.
type TvDetails struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	OriginalName        string      `json:"original_name,omitempty"`
	FirstAirDate        string      `json:"first_air_date,omitempty"`
	LastAirDate         string      `json:"last_air_date,omitempty"`
	Overview            string      `json:"overview,omitempty"`
	PosterPath          string      `json:"poster_path,omitempty"`
	BackdropPath        string      `json:"backdrop_path,omitempty"`
	VoteAverage         *float64    `json:"vote_average,omitempty"`
	VoteCount           *int        `json:"vote_count,omitempty"`
	Genres              []string    `json:"genres"`
	NumberOfSeasons     *int        `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes    *int        `json:"number_of_episodes,omitempty"`
	EpisodeRunTime      []int       `json:"episode_run_time,omitempty"`
	Status              string      `json:"status,omitempty"`
	OriginalLanguage    string      `json:"original_language,omitempty"`
	ProductionCompanies []string    `json:"production_companies,omitempty"`
	Provider            string      `json:"provider"`
	ExternalIDs         ExternalIDs `json:"external_ids"`
}

// AnimeSearchResult is an anime match from one provider.
type AnimeSearchResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleJapanese string   `json:"title_japanese,omitempty"`
	Year          *int     `json:"year,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	Score         *float64 `json:"score,omitempty"`
	Provider      string   `json:"provider"`
}

// AnimeDetails is the full metadata record for an anime.
type AnimeDetails struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	TitleEnglish  string      `json:"title_english,omitempty"`
	TitleJapanese string      `json:"title_japanese,omitempty"`
	StartDate     string      `json:"start_date,omitempty"`
	EndDate       string      `json:"end_date,omitempty"`
	Overview      string      `json:"overview,omitempty"`
	PosterPath    string      `json:"poster_path,omitempty"`
	BackdropPath  string      `json:"backdrop_path,omitempty"`
	Score         *float64    `json:"score,omitempty"`
	Genres        []string    `json:"genres"`
	Episodes      *int        `json:"episodes,omitempty"`
	Status        string      `json:"status,omitempty"`
	Format        string      `json:"format,omitempty"`
	Provider      string      `json:"provider"`
	ExternalIDs   ExternalIDs `json:"external_ids"`
}

// EpisodeMetadata is the metadata record for a single episode.
type EpisodeMetadata struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	SeasonNumber  int      `json:"season_number"`
	EpisodeNumber int      `json:"episode_number"`
	AirDate       string   `json:"air_date,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	StillPath     string   `json:"still_path,omitempty"`
	Runtime       *int     `json:"runtime,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	Provider      string   `json:"provider"`
}

// ExternalIDs aggregates the identifiers a title carries across catalogs.
type ExternalIDs struct {
	ImdbID    string `json:"imdb_id,omitempty"`
	TmdbID    string `json:"tmdb_id,omitempty"`
	TvdbID    string `json:"tvdb_id,omitempty"`
	AnilistID string `json:"anilist_id,omitempty"`
	BangumiID string `json:"bangumi_id,omitempty"`
	MalID     string `json:"mal_id,omitempty"`
}
