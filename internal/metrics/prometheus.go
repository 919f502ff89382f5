package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	outcomes         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	rateLimited      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cpfgate_outcomes_total",
			Help: "Finished requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpfgate_upstream_request_duration_seconds",
			Help:    "Latency of calls to the upstream credit API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cpfgate_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(c.outcomes, c.upstreamDuration, c.rateLimited)

	return c
}

// IncOutcome counts a finished request.
func (c *Collector) IncOutcome(operation, outcome string) {
	c.outcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveUpstreamDuration records upstream call latency.
func (c *Collector) ObserveUpstreamDuration(operation, status string, duration time.Duration) {
	c.upstreamDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// IncRateLimited counts a rate limited request.
func (c *Collector) IncRateLimited() {
	c.rateLimited.Inc()
}

// Handler returns the HTTP handler for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = (*InMemoryRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)
