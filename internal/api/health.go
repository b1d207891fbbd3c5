package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// HealthResponse reports service and database liveness
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	BaseHandler
	db *gorm.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, logger interfaces.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{logger: logger},
		db:          db,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Check)
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	if err := h.ping(r); err != nil {
		h.logger.Warn("Database health probe failed", interfaces.Error(err))
		database = "disconnected"
	}

	h.respond(w, http.StatusOK, "OK", HealthResponse{
		Status:   "healthy",
		Database: database,
	})
}

func (h *HealthHandler) ping(r *http.Request) error {
	var one int
	return h.db.WithContext(r.Context()).Raw("SELECT 1").Scan(&one).Error
}
