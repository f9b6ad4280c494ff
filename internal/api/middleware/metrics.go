package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lexcram/recall-api/internal/platform/metrics"
)

// MetricsMiddleware records request counts and latency per route pattern.
// Using the chi route pattern rather than the raw path keeps label
// cardinality bounded.
func MetricsMiddleware(recorder metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			recorder.RecordHTTPRequest(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
