// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Operation names used as metric labels.
const (
	OperationCheck    = "check"
	OperationSimulate = "simulate"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// IncOutcome counts one finished request by operation and outcome kind.
	IncOutcome(operation, outcome string)
	// ObserveUpstreamDuration records the latency of one outbound call.
	// status is "ok", "transport_error" or "upstream_error".
	ObserveUpstreamDuration(operation, status string, duration time.Duration)
	// IncRateLimited counts requests rejected by the rate limiter.
	IncRateLimited()
}
