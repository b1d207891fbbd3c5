package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// Response is the envelope every endpoint returns. Code mirrors the
// HTTP status.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	logger interfaces.Logger
}

// respond sends the envelope with the given status
func (h *BaseHandler) respond(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Code: status, Message: message, Data: data}); err != nil {
		h.logger.Error("Failed to encode JSON response", interfaces.Error(err))
	}
}

// renderError maps an application error to the envelope. Internal
// errors are logged and masked; everything else surfaces its message.
func (h *BaseHandler) renderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := "internal server error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Type != errors.ErrorTypeInternal {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", interfaces.Error(err))
	}

	h.respond(w, status, message, nil)
}

// statusFor maps the application error taxonomy to HTTP statuses
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeBadRequest:
		return http.StatusBadRequest
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrorTypeForbidden:
		return http.StatusForbidden
	case errors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses the request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequest("invalid request body")
	}
	return nil
}

// idParam parses the {id} route parameter
func idParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.BadRequest("invalid id " + strconv.Quote(raw))
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
