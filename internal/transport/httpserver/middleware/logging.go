package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"parish-app-go/pkg/logger"
)

// NewRequestLogger attaches a request scoped logger and writes one access
// line per request. It must run after chi's RequestID middleware.
func NewRequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			scoped := log.With("request_id", chimw.GetReqID(r.Context()))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), scoped)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			args := []any{
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(started).Milliseconds(),
			}
			switch {
			case status >= http.StatusInternalServerError:
				scoped.Error("http: request", args...)
			case status >= http.StatusBadRequest:
				scoped.Warn("http: request", args...)
			default:
				scoped.Debug("http: request", args...)
			}
		})
	}
}
