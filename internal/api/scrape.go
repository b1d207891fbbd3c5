package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayiahmedia/ayiah/internal/config"
	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// ScrapeHandler exposes the scraping preferences and manual matching
type ScrapeHandler struct {
	BaseHandler
	config *config.Manager
	ingest service.IngestServiceInterface
}

// NewScrapeHandler creates a new scrape handler
func NewScrapeHandler(cfg *config.Manager, ingest service.IngestServiceInterface, logger interfaces.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		BaseHandler: BaseHandler{logger: logger},
		config:      cfg,
		ingest:      ingest,
	}
}

// RegisterRoutes registers all scrape routes
func (h *ScrapeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/scrape", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Post("/config", h.UpdateConfig)
		r.Post("/manual-match", h.ManualMatch)
	})
}

// GetConfig handles GET /api/scrape/config
func (h *ScrapeHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.config.Get()
	h.respond(w, http.StatusOK, "Scrape configuration retrieved", cfg.Scrape)
}

// UpdateConfig handles POST /api/scrape/config. The updated section is
// persisted to the config file.
func (h *ScrapeHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req config.ScrapeConfig
	if err := decodeJSON(r, &req); err != nil {
		h.renderError(w, err)
		return
	}

	if req.DefaultOrganizeMethod != "" {
		if _, err := domain.ParseOrganizeMethod(req.DefaultOrganizeMethod); err != nil {
			h.renderError(w, errors.BadRequest(err.Error()))
			return
		}
	}

	h.config.Update(func(cfg *config.AppConfig) {
		if req.DefaultProvider != "" {
			cfg.Scrape.DefaultProvider = req.DefaultProvider
		}
		if req.FallbackProviders != nil {
			cfg.Scrape.FallbackProviders = req.FallbackProviders
		}
		if req.DefaultOrganizeMethod != "" {
			cfg.Scrape.DefaultOrganizeMethod = req.DefaultOrganizeMethod
		}
	})

	if err := h.config.Save(); err != nil {
		h.logger.Error("Failed to persist configuration", interfaces.Error(err))
		h.renderError(w, errors.Internal("failed to persist configuration"))
		return
	}

	cfg := h.config.Get()
	h.respond(w, http.StatusOK, "Scrape configuration updated", cfg.Scrape)
}

// ManualMatch handles POST /api/scrape/manual-match
func (h *ScrapeHandler) ManualMatch(w http.ResponseWriter, r *http.Request) {
	var req service.ManualMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.renderError(w, err)
		return
	}

	item, err := h.ingest.ManualMatch(r.Context(), req)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Media item matched", item)
}
