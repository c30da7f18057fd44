package middleware

import (
	"net/http"

	"github.com/davidbz/freeloader/internal/observability"
)

// Trace creates a middleware that injects trace ID and run ID into every request.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			traceID := observability.GenerateTraceID()
			ctx = observability.WithTraceID(ctx, traceID)

			spanID := observability.GenerateSpanID()
			ctx = observability.WithSpanID(ctx, spanID)

			runID := observability.GenerateRunID()
			ctx = observability.WithRunID(ctx, runID)

			w.Header().Set("X-Trace-Id", traceID)
			w.Header().Set("X-Run-Id", runID)

			contextLogger := observability.FromContext(ctx)
			contextLogger.Info("request started",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
