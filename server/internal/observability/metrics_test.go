package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(10)
	m.RecordRequest("respond")
	m.RecordRequest("respond")
	m.RecordRequest("escalate")
	m.RecordFailure("escalate")
	m.RecordDuration("respond", 20*time.Millisecond)
	m.RecordDuration("respond", 40*time.Millisecond)

	snapshot := m.Snapshot()
	assert.Equal(t, int64(3), snapshot.RequestTotal)
	assert.Equal(t, int64(1), snapshot.RequestFailed)
	assert.Equal(t, int64(2), snapshot.Operations["respond"].Count)
	assert.Equal(t, int64(30), snapshot.Operations["respond"].AvgDurationMs)
	assert.Equal(t, int64(1), snapshot.Operations["escalate"].ErrorCount)
}

func TestMetricsDurationRing(t *testing.T) {
	m := NewMetrics(2)
	m.RecordDuration("respond", 10*time.Millisecond)
	m.RecordDuration("respond", 20*time.Millisecond)
	m.RecordDuration("respond", 30*time.Millisecond)

	snapshot := m.Snapshot()
	assert.LessOrEqual(t, int64(20), snapshot.P50LatencyMs, "oldest sample evicted")
}
