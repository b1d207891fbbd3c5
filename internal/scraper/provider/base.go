package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayiahmedia/ayiah/internal/scraper"
)

const (
	userAgent      = "Ayiah/0.1.0"
	requestTimeout = 30 * time.Second

	// longCacheTTL is used by catalogs whose records change rarely.
	longCacheTTL = 24 * time.Hour
)

// base carries what every adapter shares: the HTTP client, the request
// limiter, and the response cache. Every outbound call holds a limiter
// permit for its duration.
type base struct {
	name    string
	client  *http.Client
	limiter *scraper.Limiter
	cache   *scraper.ResponseCache
}

func newBase(name string, limiter *scraper.Limiter, cache *scraper.ResponseCache) base {
	return base{
		name:    name,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: limiter,
		cache:   cache,
	}
}

// getJSON issues a rate-limited GET and decodes the JSON response into out.
func (b *base) getJSON(ctx context.Context, rawURL string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return b.do(req, header, out)
}

// postJSON issues a rate-limited POST carrying a JSON body and decodes the
// response into out.
func (b *base) postJSON(ctx context.Context, rawURL string, payload interface{}, header http.Header, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, header, out)
}

func (b *base) do(req *http.Request, header http.Header, out interface{}) error {
	for key, values := range header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	req.Header.Set("User-Agent", userAgent)

	guard, err := b.limiter.Acquire(req.Context(), b.name)
	if err != nil {
		return err
	}
	defer guard.Release()

	resp, err := b.client.Do(req)
	if err != nil {
		return &scraper.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &scraper.ParseError{Message: fmt.Sprintf("decoding %s response: %v", b.name, err)}
	}
	return nil
}

// checkStatus maps a non-2xx response onto the scraper error taxonomy.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &scraper.RateLimitError{RetryAfter: retryAfter(resp)}
	case http.StatusNotFound:
		return &scraper.NotFoundError{Query: resp.Request.URL.Path}
	default:
		return &scraper.APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(snippet))}
	}
}

// retryAfter reads the Retry-After header, defaulting to one second.
func retryAfter(resp *http.Response) time.Duration {
	if raw := resp.Header.Get("Retry-After"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}

// searchKey builds the cache key for one provider search. The year, when
// present, is folded into the query component so that a year-filtered
// search never shadows an unfiltered one.
func searchKey(provider string, kind scraper.MediaType, query string, year *int) scraper.CacheKey {
	q := query
	if year != nil {
		q = fmt.Sprintf("%s (%d)", query, *year)
	}
	return scraper.CacheKey{Provider: provider, Kind: string(kind), Query: q}
}

// yearOf extracts the leading year of a YYYY-MM-DD date string.
func yearOf(date string) *int {
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil || year == 0 {
		return nil
	}
	return &year
}
