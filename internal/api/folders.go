package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// CreateFolderRequest is the body of POST /api/library-folders
type CreateFolderRequest struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	MediaKind string `json:"media_kind"`
}

// UpdateFolderRequest is the body of PATCH /api/library-folders/{id}.
// The path and media kind are fixed at registration.
type UpdateFolderRequest struct {
	Name    *string `json:"name,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// FolderHandler handles library folder management and scan triggers
type FolderHandler struct {
	BaseHandler
	library service.LibraryServiceInterface
	ingest  service.IngestServiceInterface
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(library service.LibraryServiceInterface, ingest service.IngestServiceInterface, logger interfaces.Logger) *FolderHandler {
	return &FolderHandler{
		BaseHandler: BaseHandler{logger: logger},
		library:     library,
		ingest:      ingest,
	}
}

// RegisterRoutes registers all folder routes
func (h *FolderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/library-folders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/scan-all", h.ScanAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/scan", h.Scan)
		})
	})
}

// List handles GET /api/library-folders
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	folders, err := h.library.ListFolders(r.Context(), nil)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Library folders retrieved", folders)
}

// Create handles POST /api/library-folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.renderError(w, err)
		return
	}

	kind, err := domain.ParseMediaKind(req.MediaKind)
	if err != nil {
		h.renderError(w, errors.BadRequest(err.Error()))
		return
	}

	folder := &domain.LibraryFolder{
		Name:      req.Name,
		Path:      req.Path,
		MediaKind: kind,
		Enabled:   true,
	}
	if err := h.library.CreateFolder(r.Context(), folder); err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusCreated, "Library folder created", folder)
}

// Get handles GET /api/library-folders/{id}
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	folder, err := h.library.GetFolder(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Library folder retrieved", folder)
}

// Update handles PATCH /api/library-folders/{id}
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	var req UpdateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.renderError(w, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if len(updates) == 0 {
		h.renderError(w, errors.BadRequest("nothing to update"))
		return
	}

	folder, err := h.library.UpdateFolder(r.Context(), id, updates)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Library folder updated", folder)
}

// Delete handles DELETE /api/library-folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	if err := h.library.DeleteFolder(r.Context(), id); err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Library folder deleted", nil)
}

// Scan handles POST /api/library-folders/{id}/scan. The scan itself is
// synchronous; metadata fetching continues in the background.
func (h *FolderHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.renderError(w, err)
		return
	}

	result, err := h.ingest.ScanAndIngest(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Scan completed", result)
}

// ScanAll handles POST /api/library-folders/scan-all
func (h *FolderHandler) ScanAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.ingest.ScanAndIngestAll(r.Context())
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.respond(w, http.StatusOK, "Scan completed", results)
}
