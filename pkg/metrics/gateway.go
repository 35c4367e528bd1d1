package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records request metadata for the remote data gateway.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of gateway requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Gateway requests by method and status class.",
	}, []string{"method", "status_class"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_failures_total",
		Help: "Gateway requests that never produced an HTTP response.",
	}, []string{"method"})
	reg.MustRegister(duration, requests, failures)
	return &GatewayMetrics{
		duration: duration,
		requests: requests,
		failures: failures,
	}
}

// ObserveDuration records the elapsed time of one request.
func (g *GatewayMetrics) ObserveDuration(method string, elapsed time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	g.duration.WithLabelValues(normalizeLabel(method)).Observe(elapsed.Seconds())
}

// IncRequest counts a completed request under its status class (2xx, 4xx, ...).
func (g *GatewayMetrics) IncRequest(method string, status int) {
	if g == nil || g.requests == nil {
		return
	}
	g.requests.WithLabelValues(normalizeLabel(method), statusClass(status)).Inc()
}

// IncFailure counts a request that failed before any response arrived.
func (g *GatewayMetrics) IncFailure(method string) {
	if g == nil || g.failures == nil {
		return
	}
	g.failures.WithLabelValues(normalizeLabel(method)).Inc()
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func normalizeLabel(method string) string {
	if method == "" {
		return "unknown"
	}
	return method
}
