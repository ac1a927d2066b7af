package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdistributor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowdistributor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowdistributor_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// collectionSegments are path segments whose following segment is a
// resource identifier. Used to keep metric label cardinality bounded.
var collectionSegments = map[string]bool{
	"accounts":     true,
	"orders":       true,
	"sales":        true,
	"clients":      true,
	"distributors": true,
	"movements":    true,
	"transfers":    true,
	"stock":        true,
}

// Metrics middleware records HTTP metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath replaces resource identifiers with :id so that paths like
// /api/v1/sales/01ABC/payments all map to /api/v1/sales/:id/payments.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	changed := false
	for i := 0; i < len(segments)-1; i++ {
		if collectionSegments[segments[i]] && segments[i+1] != "" && !collectionSegments[segments[i+1]] {
			segments[i+1] = ":id"
			changed = true
			i++
		}
	}
	if !changed {
		return path
	}
	return strings.Join(segments, "/")
}
