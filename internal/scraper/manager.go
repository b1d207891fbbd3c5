package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// Manager owns the registered providers. Search fans out across all of
// them; detail and episode lookups route back to the provider that
// produced the result.
type Manager struct {
	providers []Provider
	mu        sync.RWMutex
	logger    interfaces.Logger
}

// NewManager creates an empty provider registry.
func NewManager(logger interfaces.Logger) *Manager {
	return &Manager{
		providers: make([]Provider, 0),
		logger:    logger,
	}
}

// Register adds a provider to the registry. Registration order is the
// configured preference order. Registering a name twice replaces the
// earlier provider in place.
func (m *Manager) Register(provider Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.providers {
		if p.Name() == provider.Name() {
			m.providers[i] = provider
			return
		}
	}

	m.providers = append(m.providers, provider)
	m.logger.Info("Registered metadata provider",
		interfaces.String("provider", provider.Name()))
}

// Providers returns the registered providers in registration order.
func (m *Manager) Providers() []Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providers := make([]Provider, len(m.providers))
	copy(providers, m.providers)
	return providers
}

// Provider looks up one provider by name.
func (m *Manager) Provider(name string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Search queries every registered provider concurrently and merges the
// successful results in registration order. Individual provider failures
// are logged and skipped; only an empty overall outcome is an error.
func (m *Manager) Search(ctx context.Context, query string, year *int) ([]SearchResult, error) {
	providers := m.Providers()
	if len(providers) == 0 {
		return nil, &ConfigError{Message: "no metadata providers registered"}
	}

	perProvider := make([][]SearchResult, len(providers))
	g, gctx := errgroup.WithContext(ctx)

	for i, provider := range providers {
		g.Go(func() error {
			results, err := provider.Search(gctx, query, year)
			if err != nil {
				m.logger.Warn("Provider search failed",
					interfaces.String("provider", provider.Name()),
					interfaces.String("query", query),
					interfaces.Error(err))
				return nil
			}
			perProvider[i] = results
			return nil
		})
	}

	// Goroutines only report nil; Wait surfaces context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]SearchResult, 0)
	for _, results := range perProvider {
		merged = append(merged, results...)
	}

	if len(merged) == 0 {
		return nil, &NotFoundError{Query: query}
	}
	return merged, nil
}

// Details routes the result to the provider that produced it.
func (m *Manager) Details(ctx context.Context, result SearchResult) (*Details, error) {
	provider, ok := m.Provider(result.Provider())
	if !ok {
		return nil, &ConfigError{Message: "unknown provider: " + result.Provider()}
	}
	return provider.Details(ctx, result)
}

// EpisodeDetails dispatches an episode lookup to the named provider.
func (m *Manager) EpisodeDetails(ctx context.Context, providerName, seriesID string, season, episode int) (*EpisodeMetadata, error) {
	provider, ok := m.Provider(providerName)
	if !ok {
		return nil, &ConfigError{Message: "unknown provider: " + providerName}
	}
	return provider.EpisodeDetails(ctx, seriesID, season, episode)
}
