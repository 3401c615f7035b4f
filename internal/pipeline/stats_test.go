package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderStats_Empty(t *testing.T) {
	assert.Equal(t, StatsSnapshot{}, NewRenderStats().Snapshot())
}

func TestRenderStats_Snapshot(t *testing.T) {
	s := NewRenderStats()
	for _, ms := range []int{40, 10, 30, 20, 50} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}
	s.Record(-time.Second)

	got := s.Snapshot()
	assert.Equal(t, 6, got.Count)
	assert.Equal(t, time.Duration(0), got.Min, "negative sample clamped to 0")
	assert.Equal(t, 50*time.Millisecond, got.Max)
	assert.Equal(t, 25*time.Millisecond, got.Avg)
	assert.Equal(t, 25*time.Millisecond, got.P50)
}

func TestPercentile(t *testing.T) {
	values := []time.Duration{10, 20, 30, 40}
	tests := []struct {
		pct  float64
		want time.Duration
	}{
		{0, 10},
		{100, 40},
		{50, 25},
		{-5, 10},
		{150, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentile(values, tt.pct), "percentile(%v)", tt.pct)
	}
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}
