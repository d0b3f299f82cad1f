package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics counts requests by method, route pattern, and status.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one finished request.
func (h *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = normalizeLabel(route)
	h.requests.WithLabelValues(method, route, status).Inc()
	h.duration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
