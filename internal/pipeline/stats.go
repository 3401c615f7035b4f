package pipeline

import (
	"sort"
	"sync"
	"time"
)

// StatsSnapshot aggregates page render latencies.
type StatsSnapshot struct {
	Count int           `json:"count"`
	Min   time.Duration `json:"min_ns"`
	Max   time.Duration `json:"max_ns"`
	Avg   time.Duration `json:"avg_ns"`
	P50   time.Duration `json:"p50_ns"`
	P95   time.Duration `json:"p95_ns"`
	P99   time.Duration `json:"p99_ns"`
}

// RenderStats collects per-page render latencies for one run.
type RenderStats struct {
	mu      sync.Mutex
	samples []time.Duration
}

func NewRenderStats() *RenderStats {
	return &RenderStats{samples: make([]time.Duration, 0, 256)}
}

func (s *RenderStats) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, d)
}

func (s *RenderStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	values := append([]time.Duration(nil), s.samples...)
	s.mu.Unlock()

	if len(values) == 0 {
		return StatsSnapshot{}
	}
	var sum time.Duration
	for _, v := range values {
		sum += v
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count: len(values),
		Min:   values[0],
		Max:   values[len(values)-1],
		Avg:   sum / time.Duration(len(values)),
		P50:   percentile(values, 50),
		P95:   percentile(values, 95),
		P99:   percentile(values, 99),
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []time.Duration, pct float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return time.Duration(lo + (hi-lo)*weight)
}
