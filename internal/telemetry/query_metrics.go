// Package telemetry provides an optional, in-process query-latency and
// zero-result counter for the query engine. Nothing here is persisted
// or reported externally, and nothing here affects query semantics —
// attaching a collector is purely observational.
package telemetry

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket is a histogram bucket for query latency.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent is one completed query call, recorded for telemetry.
type QueryEvent struct {
	Query       string
	ResultCount int
	Latency     time.Duration
}

// IsZeroResult reports whether this query returned no results.
func (e QueryEvent) IsZeroResult() bool { return e.ResultCount == 0 }

// TermCount is a query term and its observed frequency.
type TermCount struct {
	Term  string
	Count int64
}

// Snapshot is an immutable view of accumulated query metrics.
type Snapshot struct {
	TotalQueries        int64
	ZeroResultCount     int64
	TopTerms            []TermCount
	LatencyDistribution map[LatencyBucket]int64
	Since               time.Time
}

// ZeroResultRate returns the fraction of queries that returned no results.
func (s *Snapshot) ZeroResultRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries)
}

// QueryMetrics collects query telemetry in memory. Safe for concurrent
// use; a nil *QueryMetrics accepts Record calls as a no-op so callers
// can wire it unconditionally and leave it disabled by passing nil.
type QueryMetrics struct {
	mu sync.RWMutex

	topTerms     *lru.Cache[string, int64]
	latencies    map[LatencyBucket]int64
	totalQueries int64
	zeroResults  int64
	startTime    time.Time
}

const defaultTopTermsCapacity = 100

// NewQueryMetrics constructs an in-memory collector.
func NewQueryMetrics() *QueryMetrics {
	topTerms, _ := lru.New[string, int64](defaultTopTermsCapacity)
	return &QueryMetrics{
		topTerms:  topTerms,
		latencies: make(map[LatencyBucket]int64),
		startTime: time.Now(),
	}
}

// Record captures one query's outcome. A nil receiver is a no-op, so
// telemetry can be left disabled by construction.
func (m *QueryMetrics) Record(event QueryEvent) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	if event.IsZeroResult() {
		m.zeroResults++
	}
	m.latencies[LatencyToBucket(event.Latency)]++

	for _, term := range extractTerms(event.Query) {
		count, _ := m.topTerms.Get(term)
		m.topTerms.Add(term, count+1)
	}
}

// Snapshot returns the current accumulated metrics. A nil receiver
// returns a zero-value snapshot.
func (m *QueryMetrics) Snapshot() *Snapshot {
	if m == nil {
		return &Snapshot{LatencyDistribution: map[LatencyBucket]int64{}}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}

	var topTerms []TermCount
	for _, key := range m.topTerms.Keys() {
		if count, ok := m.topTerms.Peek(key); ok {
			topTerms = append(topTerms, TermCount{Term: key, Count: count})
		}
	}
	for i := 0; i < len(topTerms); i++ {
		for j := i + 1; j < len(topTerms); j++ {
			if topTerms[j].Count > topTerms[i].Count {
				topTerms[i], topTerms[j] = topTerms[j], topTerms[i]
			}
		}
	}

	return &Snapshot{
		TotalQueries:        m.totalQueries,
		ZeroResultCount:     m.zeroResults,
		TopTerms:            topTerms,
		LatencyDistribution: latencies,
		Since:               m.startTime,
	}
}

// extractTerms lowercases and splits a query into terms of at least 3
// bytes, the same minimum the document index's tokenizer uses.
func extractTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}
