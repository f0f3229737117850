package middleware

import (
	"net/http"
	"strconv"
	"time"

	"stylemart-be/internal/logger"
	"stylemart-be/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request count and latency labelled by the matched chi route.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &logger.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
			m.LatencyMS.WithLabelValues(r.Method, route).
				Observe(float64(time.Since(start).Microseconds()) / 1000)
		})
	}
}
