package provider

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/utils"
)

// roundTripFunc stubs the HTTP transport so adapter tests never touch
// the network.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

// testDeps builds a fresh limiter and response cache for one adapter.
func testDeps() (*scraper.Limiter, *scraper.ResponseCache, func()) {
	store := utils.NewInMemoryCache()
	limiter := scraper.NewLimiter(scraper.RateLimitConfig{
		MaxConcurrent: 5,
		MaxRequests:   100,
		WindowSeconds: 1,
	})
	cache := scraper.NewResponseCache(store, time.Minute)
	return limiter, cache, store.Stop
}

// stubTransport swaps the adapter's transport for the scripted one.
func stubTransport(b *base, fn roundTripFunc) {
	b.client.Transport = fn
}
