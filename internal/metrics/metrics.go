package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stacksave",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacksave",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stacksave",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	faucetRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacksave",
			Subsystem: "faucet",
			Name:      "requests_total",
			Help:      "Faucet requests by outcome (granted, cooldown, error).",
		},
		[]string{"outcome"},
	)

	snapshotsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stacksave",
			Subsystem: "scheduler",
			Name:      "apy_snapshots_recorded_total",
			Help:      "Protocol APY snapshots inserted by the scheduler.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		faucetRequests,
		snapshotsRecorded,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request in flight and returns the func that ends it.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// ObserveRequest records a completed HTTP request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func ObserveRequest(method, path string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, path, statusLabel(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordFaucetOutcome counts one faucet request.
func RecordFaucetOutcome(outcome string) {
	faucetRequests.WithLabelValues(outcome).Inc()
}

// RecordSnapshots counts inserted APY snapshots.
func RecordSnapshots(n int) {
	snapshotsRecorded.Add(float64(n))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
