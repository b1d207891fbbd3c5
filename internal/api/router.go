package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"

	"github.com/ayiahmedia/ayiah/internal/config"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

const rateLimitPerMinute = 300

// Deps bundles everything the HTTP surface needs
type Deps struct {
	Library service.LibraryServiceInterface
	Ingest  service.IngestServiceInterface
	Scraper *scraper.Manager
	Config  *config.Manager
	DB      *gorm.DB
	Logger  interfaces.Logger
}

// NewRouter builds the chi router with all middleware and routes
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimitPerMinute, time.Minute))

		NewHealthHandler(deps.DB, deps.Logger).RegisterRoutes(r)
		NewLibraryHandler(deps.Library, deps.Ingest, deps.Logger).RegisterRoutes(r)
		NewFolderHandler(deps.Library, deps.Ingest, deps.Logger).RegisterRoutes(r)
		NewProviderHandler(deps.Scraper, deps.Logger).RegisterRoutes(r)
		NewScrapeHandler(deps.Config, deps.Ingest, deps.Logger).RegisterRoutes(r)
	})

	return r
}
