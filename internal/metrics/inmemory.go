package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Outcomes                map[string]uint64 // keyed by "operation/outcome"
	UpstreamCalls           map[string]uint64 // keyed by "operation/status"
	UpstreamDurationTotalNs int64
	RateLimited             uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                      sync.Mutex
	outcomes                map[string]uint64
	upstreamCalls           map[string]uint64
	upstreamDurationTotalNs int64
	rateLimited             uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		outcomes:      make(map[string]uint64),
		upstreamCalls: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Outcomes:                make(map[string]uint64, len(m.outcomes)),
		UpstreamCalls:           make(map[string]uint64, len(m.upstreamCalls)),
		UpstreamDurationTotalNs: atomic.LoadInt64(&m.upstreamDurationTotalNs),
		RateLimited:             atomic.LoadUint64(&m.rateLimited),
	}
	for k, v := range m.outcomes {
		snap.Outcomes[k] = v
	}
	for k, v := range m.upstreamCalls {
		snap.UpstreamCalls[k] = v
	}
	return snap
}

// IncOutcome increments the outcome counter.
func (m *InMemoryRecorder) IncOutcome(operation, outcome string) {
	m.mu.Lock()
	m.outcomes[operation+"/"+outcome]++
	m.mu.Unlock()
}

// ObserveUpstreamDuration records an upstream call.
func (m *InMemoryRecorder) ObserveUpstreamDuration(operation, status string, duration time.Duration) {
	m.mu.Lock()
	m.upstreamCalls[operation+"/"+status]++
	m.mu.Unlock()
	atomic.AddInt64(&m.upstreamDurationTotalNs, duration.Nanoseconds())
}

// IncRateLimited increments the rate limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
