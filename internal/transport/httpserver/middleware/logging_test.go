package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"parish-app-go/pkg/logger"
)

func TestRequestLoggerWritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelDebug, "text")

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(NewRequestLogger(log))
	r.Get("/api/priests/{id}", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context(), nil).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/priests/12", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "msg=\"inside handler\" request_id=req-42")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "route=/api/priests/{id}")
	assert.Contains(t, out, "status=404")
}
