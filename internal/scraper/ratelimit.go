package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// RateLimitConfig tunes the shared request limiter.
type RateLimitConfig struct {
	// MaxConcurrent is the number of requests in flight across all
	// providers.
	MaxConcurrent int
	// MaxRequests is the number of requests one provider may issue
	// inside the sliding window.
	MaxRequests int
	// WindowSeconds is the sliding window length.
	WindowSeconds int
}

// DefaultRateLimitConfig returns the limiter defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxConcurrent: 5,
		MaxRequests:   40,
		WindowSeconds: 10,
	}
}

// Limiter combines a global concurrency gate with a per-provider sliding
// request window. Acquisition blocks cooperatively; the only error it can
// return is the context's.
type Limiter struct {
	sem      *semaphore.Weighted
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
}

// NewLimiter creates a limiter from the given configuration. Non-positive
// values fall back to the defaults.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = defaults.WindowSeconds
	}

	return &Limiter{
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		requests: make(map[string][]time.Time),
		max:      cfg.MaxRequests,
		window:   time.Duration(cfg.WindowSeconds) * time.Second,
	}
}

// Guard holds one concurrency permit. Release returns it; releasing more
// than once is safe.
type Guard struct {
	sem  *semaphore.Weighted
	once sync.Once
}

// Release returns the permit to the limiter.
func (g *Guard) Release() {
	g.once.Do(func() {
		g.sem.Release(1)
	})
}

// Acquire blocks until a concurrency permit is held and the provider's
// sliding window has room, then records the request. The returned guard
// must be released when the request completes.
func (l *Limiter) Acquire(ctx context.Context, provider string) (*Guard, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	for {
		l.mu.Lock()
		now := time.Now()
		stamps := pruneExpired(l.requests[provider], now.Add(-l.window))
		if len(stamps) < l.max {
			l.requests[provider] = append(stamps, now)
			l.mu.Unlock()
			return &Guard{sem: l.sem}, nil
		}
		l.requests[provider] = stamps
		wait := stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			wait = 100 * time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.sem.Release(1)
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// NextAvailable reports how long the provider must wait before its window
// has room again. Zero means a request may proceed immediately.
func (l *Limiter) NextAvailable(provider string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	stamps := pruneExpired(l.requests[provider], now.Add(-l.window))
	l.requests[provider] = stamps

	if len(stamps) < l.max {
		return 0
	}
	return stamps[0].Add(l.window).Sub(now)
}

// pruneExpired drops timestamps at or before the cutoff. Stamps are
// appended in order, so the survivors form a suffix.
func pruneExpired(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && !stamps[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return stamps
	}
	return append([]time.Time(nil), stamps[idx:]...)
}
