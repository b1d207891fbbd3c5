package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

const (
	defaultTestTimeout = 10 * time.Second
	maxTestTimeout     = 60 * time.Second

	// testQuery is a deliberately common title so a healthy provider
	// always finds something.
	testQuery = "one"
)

// ProviderInfo describes one registered metadata provider
type ProviderInfo struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	SupportedMediaTypes []string `json:"supported_media_types"`
	RequiresAPIKey      bool     `json:"requires_api_key"`
	Available           bool     `json:"available"`
}

// ProviderListResponse wraps the provider listing
type ProviderListResponse struct {
	Providers []ProviderInfo `json:"providers"`
}

// TestProviderRequest is the body of POST /api/provider/providers/{provider}/test
type TestProviderRequest struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// TestProviderResponse reports the outcome of a provider connectivity test
type TestProviderResponse struct {
	Provider     string `json:"provider"`
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
}

// providerCatalog carries the static display information per provider id.
var providerCatalog = map[string]struct {
	displayName string
	description string
	mediaTypes  []string
}{
	"tmdb":    {"The Movie Database", "Movies and TV series from themoviedb.org", []string{"movie", "tv"}},
	"tvdb":    {"TheTVDB", "TV series from thetvdb.com", []string{"tv"}},
	"anilist": {"AniList", "Anime from anilist.co", []string{"anime"}},
	"bangumi": {"Bangumi", "Anime and related media from bgm.tv", []string{"anime"}},
}

// ProviderHandler exposes the live provider registry
type ProviderHandler struct {
	BaseHandler
	manager *scraper.Manager
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(manager *scraper.Manager, logger interfaces.Logger) *ProviderHandler {
	return &ProviderHandler{
		BaseHandler: BaseHandler{logger: logger},
		manager:     manager,
	}
}

// RegisterRoutes registers all provider routes
func (h *ProviderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/provider", func(r chi.Router) {
		r.Get("/providers", h.List)
		r.Post("/providers/{provider}/test", h.Test)
	})
}

// List handles GET /api/provider/providers
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	registered := h.manager.Providers()
	infos := make([]ProviderInfo, 0, len(registered))

	for _, p := range registered {
		info := ProviderInfo{
			ID:             p.Name(),
			Name:           p.Name(),
			RequiresAPIKey: p.RequiresAPIKey(),
			Available:      true,
		}
		if entry, ok := providerCatalog[p.Name()]; ok {
			info.Name = entry.displayName
			info.Description = entry.description
			info.SupportedMediaTypes = entry.mediaTypes
		}
		infos = append(infos, info)
	}

	h.respond(w, http.StatusOK, "Providers retrieved", ProviderListResponse{Providers: infos})
}

// Test handles POST /api/provider/providers/{provider}/test. A trivial
// search is issued against the named provider to verify connectivity.
func (h *ProviderHandler) Test(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.manager.Provider(name)
	if !ok {
		h.renderError(w, errors.NotFound("provider not registered: "+name))
		return
	}

	var req TestProviderRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.renderError(w, err)
			return
		}
	}

	timeout := defaultTestTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
		if timeout > maxTestTimeout {
			h.renderError(w, errors.BadRequest("timeout_seconds must be between 1 and 60"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	started := time.Now()
	_, err := provider.Search(ctx, testQuery, nil)
	elapsed := time.Since(started)

	status := "ok"
	if err != nil && !scraper.IsNotFound(err) {
		h.logger.Warn("Provider connectivity test failed",
			interfaces.String("provider", name),
			interfaces.Error(err))
		status = "error"
	}

	h.respond(w, http.StatusOK, "Provider tested", TestProviderResponse{
		Provider:     name,
		Status:       status,
		ResponseTime: elapsed.Round(time.Millisecond).String(),
	})
}
