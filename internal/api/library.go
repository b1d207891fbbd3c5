package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// LibraryResponse wraps an item listing
type LibraryResponse struct {
	Items []*domain.MediaItemWithMetadata `json:"items"`
	Total int                             `json:"total"`
}

// LibraryHandler handles media item browsing and refresh
type LibraryHandler struct {
	BaseHandler
	library service.LibraryServiceInterface
	ingest  service.IngestServiceInterface
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library service.LibraryServiceInterface, ingest service.IngestServiceInterface, logger interfaces.Logger) *LibraryHandler {
	return &LibraryHandler{
		BaseHandler: BaseHandler{logger: logger},
		library:     library,
		ingest:      ingest,
	}
}

// RegisterRoutes registers all library routes
func (h *LibraryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/library", func(r chi.Router) {
		r.Get("/movies", h.ListMovies)
		r.Get("/tv", h.ListTV)
		r.Get("/items/{id}", h.GetItem)
		r.Get("/items/{id}/refresh", h.RefreshItem)
	})
}

// ListMovies handles GET /api/library/movies
func (h *LibraryHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, domain.MediaKindMovie, "Movies retrieved")
}

// ListTV handles GET /api/library/tv
func (h *LibraryHandler) ListTV(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, domain.MediaKindTV, "TV shows retrieved")
}

func (h *LibraryHandler) listByKind(w http.ResponseWriter, r *http.Request, kind domain.MediaKind, message string) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	items, err := h.library.ListItemsByKind(r.Context(), kind, limit, offset)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, message, LibraryResponse{Items: items, Total: len(items)})
}

// GetItem handles GET /api/library/items/{id}
func (h *LibraryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	item, err := h.library.GetItem(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Media item retrieved", item)
}

// RefreshItem handles GET /api/library/items/{id}/refresh
func (h *LibraryHandler) RefreshItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	item, err := h.ingest.RefreshMetadata(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Metadata refreshed", item)
}
