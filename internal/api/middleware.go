package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// RequestLogger logs every request with its id, status, and duration
func RequestLogger(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				interfaces.String("request_id", middleware.GetReqID(r.Context())),
				interfaces.String("method", r.Method),
				interfaces.String("path", r.URL.Path),
				interfaces.Int("status", ww.Status()),
				interfaces.Duration("duration", time.Since(start)),
				interfaces.String("remote", r.RemoteAddr))
		}
		return http.HandlerFunc(fn)
	}
}
