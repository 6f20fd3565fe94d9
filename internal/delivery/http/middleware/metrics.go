package middleware

import (
	"net/http"
	"time"

	"cfpportal/internal/adapters/metrics"
)

// Metrics records request counts and latencies labelled by route pattern.
// It must wrap the ServeMux directly: the mux sets r.Pattern on the
// request it receives, which is read after the handler returns.
func Metrics(m *metrics.Metrics, mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(wrapped, r)
		m.ObserveHTTP(r.Method, r.Pattern, wrapped.status, time.Since(start))
	})
}
