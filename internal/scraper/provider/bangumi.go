package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const bangumiBaseURL = "https://api.bgm.tv"

// Bangumi adapts the bangumi.tv API. Anime and manga only, no API key.
// Chinese titles are preferred when present.
type Bangumi struct {
	base
}

// NewBangumi creates a Bangumi adapter.
func NewBangumi(limiter *scraper.Limiter, cache *scraper.ResponseCache) *Bangumi {
	return &Bangumi{
		base: newBase("bangumi", limiter, cache),
	}
}

func (p *Bangumi) Name() string { return p.name }

func (p *Bangumi) RequiresAPIKey() bool { return false }

// Search queries the anime subject index.
func (p *Bangumi) Search(ctx context.Context, query string, year *int) ([]scraper.SearchResult, error) {
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

// Details resolves the full subject record for an anime result.
func (p *Bangumi) Details(ctx context.Context, result scraper.SearchResult) (*scraper.Details, error) {
	if result.Type != scraper.MediaTypeAnime {
		return nil, &scraper.ConfigError{Message: "Bangumi specializes in anime/manga"}
	}
	return p.subjectDetails(ctx, result.Anime.ID)
}

// EpisodeDetails is unsupported: Bangumi carries no per-episode records.
func (p *Bangumi) EpisodeDetails(ctx context.Context, seriesID string, season, episode int) (*scraper.EpisodeMetadata, error) {
	return nil, &scraper.ConfigError{Message: "Bangumi does not provide individual episode details"}
}

func (p *Bangumi) searchAnime(ctx context.Context, query string, year *int) ([]scraper.AnimeSearchResult, error) {
	key := searchKey(p.name, scraper.MediaTypeAnime, query, year)
	var cached []scraper.AnimeSearchResult
	if p.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	endpoint := bangumiBaseURL + "/search/subject/" + url.PathEscape(query) + "?type=2&responseGroup=small"

	var resp bangumiSearchResponse
	if err := p.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	results := make([]scraper.AnimeSearchResult, 0, len(resp.List))
	for _, subject := range resp.List {
		title := subject.NameCN
		if title == "" {
			title = subject.Name
		}

		results = append(results, scraper.AnimeSearchResult{
			ID:            strconv.Itoa(subject.ID),
			Title:         title,
			TitleJapanese: subject.Name,
			Year:          yearOf(subject.AirDate),
			PosterPath:    subject.Images.Large,
			Overview:      subject.Summary,
			Score:         subject.Score,
			Provider:      p.name,
		})
	}

	p.cache.SetWithTTL(ctx, key, results, longCacheTTL)
	return results, nil
}

func (p *Bangumi) subjectDetails(ctx context.Context, id string) (*scraper.Details, error) {
	var subject bangumiSubject
	if err := p.getJSON(ctx, bangumiBaseURL+"/v0/subjects/"+url.PathEscape(id), nil, &subject); err != nil {
		return nil, err
	}

	title := subject.NameCN
	if title == "" {
		title = subject.Name
	}

	genres := make([]string, 0, len(subject.Tags))
	for _, tag := range subject.Tags {
		genres = append(genres, tag.Name)
	}

	return scraper.NewAnimeDetails(scraper.AnimeDetails{
		ID:            strconv.Itoa(subject.ID),
		Title:         title,
		TitleJapanese: subject.Name,
		StartDate:     subject.Date,
		Overview:      subject.Summary,
		PosterPath:    subject.Images.Large,
		Score:         subject.Rating.Score,
		Genres:        genres,
		Episodes:      subject.Eps,
		Format:        bangumiFormat(subject.Type),
		Provider:      p.name,
		ExternalIDs: scraper.ExternalIDs{
			BangumiID: strconv.Itoa(subject.ID),
		},
	}), nil
}

// bangumiFormat maps the numeric subject type onto a display format.
func bangumiFormat(subjectType int) string {
	switch subjectType {
	case 2:
		return "TV"
	case 6:
		return "Movie"
	default:
		return "Unknown"
	}
}

// Bangumi API response types.

type bangumiSearchResponse struct {
	List []bangumiSearchSubject `json:"list"`
}

type bangumiSearchSubject struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	NameCN  string        `json:"name_cn"`
	AirDate string        `json:"air_date"`
	Images  bangumiImages `json:"images"`
	Summary string        `json:"summary"`
	Score   *float64      `json:"score"`
}

type bangumiSubject struct {
	ID      int           `json:"id"`
	Type    int           `json:"type"`
	Name    string        `json:"name"`
	NameCN  string        `json:"name_cn"`
	Summary string        `json:"summary"`
	Date    string        `json:"date"`
	Images  bangumiImages `json:"images"`
	Eps     *int          `json:"eps"`
	Rating  bangumiRating `json:"rating"`
	Tags    []bangumiTag  `json:"tags"`
}

type bangumiImages struct {
	Large string `json:"large"`
}

type bangumiRating struct {
	Score *float64 `json:"score"`
}

type bangumiTag struct {
	Name string `json:"name"`
}
