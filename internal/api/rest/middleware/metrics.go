package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nivobank/backoffice/pkg/metrics"
)

// Metrics returns a middleware that records HTTP metrics. Paths are labeled
// with the chi route pattern, not the raw URL, so request UUIDs don't blow
// up label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			requestSize := r.ContentLength

			next.ServeHTTP(ww, r)

			// Route pattern is only resolved after routing has run
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			duration := time.Since(start).Seconds()
			statusStr := strconv.Itoa(ww.Status())

			if requestSize > 0 {
				m.HTTPRequestSize.WithLabelValues(r.Method, path).Observe(float64(requestSize))
			}

			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, statusStr).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)

			if responseSize := ww.BytesWritten(); responseSize > 0 {
				m.HTTPResponseSize.WithLabelValues(r.Method, path, statusStr).Observe(float64(responseSize))
			}
		})
	}
}
