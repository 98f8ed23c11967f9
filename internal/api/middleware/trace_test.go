package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger(t)

	var seen string
	h := TraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	t.Run("generates an ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, seen, shared.TraceIDLength*2)
		assert.Equal(t, seen, w.Header().Get(shared.TraceIDHeader))
		assert.Contains(t, buf.String(), `"trace_id":"`+seen+`"`)
	})

	t.Run("honours incoming header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/health", nil)
		r.Header.Set(shared.TraceIDHeader, "client-trace-42")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, "client-trace-42", seen)
	})

	t.Run("falls back to chi request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		chimw.RequestID(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(shared.TraceIDHeader))
	})
}
