package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const anilistBaseURL = "https://graphql.anilist.co"

const anilistSearchQuery = `
query ($search: String, $year: Int) {
  Page(page: 1, perPage: 20) {
    media(search: $search, seasonYear: $year, type: ANIME) {
      id
      title {
        romaji
        english
        native
      }
      seasonYear
      coverImage {
        large
      }
      description
      averageScore
    }
  }
}`

const anilistDetailsQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    title {
      romaji
      english
      native
    }
    startDate {
      year
      month
      day
    }
    endDate {
      year
      month
      day
    }
    description
    coverImage {
      large
    }
    bannerImage
    averageScore
    genres
    episodes
    status
    format
    idMal
  }
}`

// AniList adapts the AniList GraphQL API. Anime only, no API key.
type AniList struct {
	base
}

// NewAniList creates an AniList adapter.
func NewAniList(limiter *scraper.Limiter, cache *scraper.ResponseCache) *AniList {
	return &AniList{
		base: newBase("anilist", limiter, cache),
	}
}

func (p *AniList) Name() string { return p.name }

func (p *AniList) RequiresAPIKey() bool { return false }

// Search queries the anime index.
func (p *AniList) Search(ctx context.Context, query string, year *int) ([]scraper.SearchResult, error) {
	anime, err := p.searchAnime(ctx, query, year)
	if err != nil {
		return nil, err
	}

	results := make([]scraper.SearchResult, 0, len(anime))
	for _, a := range anime {
		results = append(results, scraper.NewAnimeResult(a))
	}
	return results, nil
}

// Details resolves the full record for an anime result.
func (p *AniList) Details(ctx context.Context, result scraper.SearchResult) (*scraper.Details, error) {
	if result.Type != scraper.MediaTypeAnime {
		return nil, &scraper.ConfigError{Message: "AniList specializes in anime"}
	}
	return p.animeDetails(ctx, result.Anime.ID)
}

// EpisodeDetails is unsupported: AniList carries no per-episode records.
func (p *AniList) EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*scraper.EpisodeMetadata, error) {
	return nil, &scraper.ConfigError{Message: "AniList does not provide individual episode details"}
}

func (p *AniList) searchAnime(ctx context.Context, query string, year *int) ([]scraper.AnimeSearchResult, error) {
	key := searchKey(p.name, scraper.MediaTypeAnime, query, year)
	var cached []scraper.AnimeSearchResult
	if p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	variables := map[string]interface{}{
		"search": query,
		"year":   year,
	}

	var envelope anilistSearchEnvelope
	if err := p.query(ctx, anilistSearchQuery, variables, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, &scraper.ParseError{Message: "no data in AniList response"}
	}

	results := make([]scraper.AnimeSearchResult, 0, len(envelope.Data.Page.Media))
	for _, anime := range envelope.Data.Page.Media {
		results = append(results, scraper.AnimeSearchResult{
			ID:            strconv.Itoa(anime.ID),
			Title:         anime.Title.Romaji,
			TitleEnglish:  anime.Title.English,
			TitleJapanese: anime.Title.Native,
			Year:          anime.SeasonYear,
			PosterPath:    anime.CoverImage.Large,
			Overview:      anime.Description,
			Score:         anilistScore(anime.AverageScore),
			Provider:      p.name,
		})
	}

	p.cache.SetWithTTL(ctx, key, results, longCacheTTL)
	return results, nil
}

func (p *AniList) animeDetails(ctx context.Context, id string) (*scraper.Details, error) {
	animeID, err := strconv.Atoi(id)
	if err != nil {
		return nil, &scraper.ParseError{Message: fmt.Sprintf("invalid AniList id %q", id)}
	}

	variables := map[string]interface{}{"id": animeID}

	var envelope anilistDetailsEnvelope
	if err := p.query(ctx, anilistDetailsQuery, variables, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, &scraper.ParseError{Message: "no data in AniList response"}
	}
	anime := envelope.Data.Media

	external := scraper.ExternalIDs{
		AnilistID: strconv.Itoa(anime.ID),
	}
	if anime.IDMal != nil {
		external.MalID = strconv.Itoa(*anime.IDMal)
	}

	return scraper.NewAnimeDetails(scraper.AnimeDetails{
		ID:            strconv.Itoa(anime.ID),
		Title:         anime.Title.Romaji,
		TitleEnglish:  anime.Title.English,
		TitleJapanese: anime.Title.Native,
		StartDate:     anime.StartDate.format(),
		EndDate:       anime.EndDate.format(),
		Overview:      anime.Description,
		PosterPath:    anime.CoverImage.Large,
		BackdropPath:  anime.BannerImage,
		Score:         anilistScore(anime.AverageScore),
		Genres:        anime.Genres,
		Episodes:      anime.Episodes,
		Status:        anime.Status,
		Format:        anime.Format,
		Provider:      p.name,
		ExternalIDs:   external,
	}), nil
}

// query posts one GraphQL document with its variables.
func (p *AniList) query(ctx context.Context, document string, variables map[string]interface{}, out interface{}) error {
	payload := map[string]interface{}{
		"query":     document,
		"variables": variables,
	}

	header := http.Header{}
	header.Set("Accept", "application/json")

	return p.postJSON(ctx, anilistBaseURL, payload, header, out)
}

// anilistScore rescales the 0-100 average score to a 0-10 rating.
func anilistScore(score *int) *float64 {
	if score == nil {
		return nil
	}
	rescaled := float64(*score) / 10.0
	return &rescaled
}

// AniList API response types.

type anilistSearchEnvelope struct {
	Data *struct {
		Page struct {
			Media []anilistSearchMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

type anilistSearchMedia struct {
	ID           int               `json:"id"`
	Title        anilistTitle      `json:"title"`
	SeasonYear   *int              `json:"seasonYear"`
	CoverImage   anilistCoverImage `json:"coverImage"`
	Description  string            `json:"description"`
	AverageScore *int              `json:"averageScore"`
}

type anilistDetailsEnvelope struct {
	Data *struct {
		Media anilistMedia `json:"Media"`
	} `json:"data"`
}

type anilistMedia struct {
	ID           int               `json:"id"`
	Title        anilistTitle      `json:"title"`
	StartDate    anilistDate       `json:"startDate"`
	EndDate      anilistDate       `json:"endDate"`
	Description  string            `json:"description"`
	CoverImage   anilistCoverImage `json:"coverImage"`
	BannerImage  string            `json:"bannerImage"`
	AverageScore *int              `json:"averageScore"`
	Genres       []string          `json:"genres"`
	Episodes     *int              `json:"episodes"`
	Status       string            `json:"status"`
	Format       string            `json:"format"`
	IDMal        *int              `json:"idMal"`
}

type anilistTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

type anilistCoverImage struct {
	Large string `json:"large"`
}

type anilistDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// format renders the date as YYYY-MM-DD, or empty when incomplete.
func (d anilistDate) format() string {
	if d.Year == nil || d.Month == nil || d.Day == nil {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", *d.Year, *d.Month, *d.Day)
}
