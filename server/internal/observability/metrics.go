package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters and latencies for the message pipeline:
// classification, escalation, and state machine transitions.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	operations map[string]*OperationMetrics

	// Ring of recent durations for percentile snapshots.
	durations    []time.Duration
	maxDurations int
}

// OperationMetrics tracks one named operation.
type OperationMetrics struct {
	count         atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a metrics collector keeping the last maxDurations
// samples for percentile estimates.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operations:   make(map[string]*OperationMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the process-wide collector.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest counts one request for the named operation.
func (m *Metrics) RecordRequest(operation string) {
	m.requestTotal.Add(1)
	m.operationMetrics(operation).count.Add(1)
}

// RecordFailure counts one failed request for the named operation.
func (m *Metrics) RecordFailure(operation string) {
	m.requestFailed.Add(1)
	m.operationMetrics(operation).errorCount.Add(1)
}

// RecordDuration records an observed latency for the named operation.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.operationMetrics(operation).totalDuration.Add(d.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, d)
}

// Snapshot summarizes the collector state.
type Snapshot struct {
	RequestTotal  int64
	RequestFailed int64
	P50LatencyMs  int64
	P95LatencyMs  int64
	Operations    map[string]OperationSnapshot
}

// OperationSnapshot summarizes one operation.
type OperationSnapshot struct {
	Count         int64
	ErrorCount    int64
	AvgDurationMs int64
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	snapshot := Snapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Operations:    map[string]OperationSnapshot{},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, op := range m.operations {
		count := op.count.Load()
		entry := OperationSnapshot{Count: count, ErrorCount: op.errorCount.Load()}
		if count > 0 {
			entry.AvgDurationMs = op.totalDuration.Load() / count
		}
		snapshot.Operations[name] = entry
	}
	if len(m.durations) > 0 {
		sorted := make([]time.Duration, len(m.durations))
		copy(sorted, m.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		snapshot.P50LatencyMs = sorted[len(sorted)/2].Milliseconds()
		snapshot.P95LatencyMs = sorted[len(sorted)*95/100].Milliseconds()
	}
	return snapshot
}

func (m *Metrics) operationMetrics(operation string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.operations[operation]; ok {
		return op
	}
	op := &OperationMetrics{}
	m.operations[operation] = op
	return op
}
