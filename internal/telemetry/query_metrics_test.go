package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Given: a fresh collector
// When: a mix of zero-result and hit queries are recorded
// Then: the snapshot reflects accurate totals and the zero-result rate
func TestQueryMetrics_RecordAndSnapshot(t *testing.T) {
	m := NewQueryMetrics()
	m.Record(QueryEvent{Query: "vector search engines", ResultCount: 3, Latency: 20 * time.Millisecond})
	m.Record(QueryEvent{Query: "vector search", ResultCount: 0, Latency: 5 * time.Millisecond})

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.ZeroResultCount)
	assert.InDelta(t, 0.5, snap.ZeroResultRate(), 0.001)
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP50])
	assert.Equal(t, int64(1), snap.LatencyDistribution[BucketP10])
}

// Given: a nil *QueryMetrics
// When: Record and Snapshot are called
// Then: both are safe no-ops
func TestQueryMetrics_NilReceiverIsNoOp(t *testing.T) {
	var m *QueryMetrics
	m.Record(QueryEvent{Query: "anything", ResultCount: 1})
	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.TotalQueries)
}
