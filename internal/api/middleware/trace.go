package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// TraceMiddleware assigns every request a trace ID, echoes it in the
// X-Trace-ID response header and stores a logger carrying it in the context.
// An incoming X-Trace-ID wins over chi's request ID.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			incoming := r.Header.Get(shared.TraceIDHeader)
			if incoming == "" {
				incoming = chimw.GetReqID(r.Context())
			}
			ctx := shared.WithTraceID(r.Context(), incoming)
			traceID := shared.GetTraceID(ctx)
			w.Header().Set(shared.TraceIDHeader, traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
