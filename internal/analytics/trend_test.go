package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/devtrack/internal/domain"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		counts   []int
		expected domain.TrendDirection
	}{
		{
			name:     "empty series",
			counts:   nil,
			expected: domain.TrendStable,
		},
		{
			name:     "single bucket",
			counts:   []int{7},
			expected: domain.TrendStable,
		},
		{
			name:     "flat series",
			counts:   []int{4, 4, 4, 4},
			expected: domain.TrendStable,
		},
		{
			name:     "growing counts",
			counts:   []int{1, 2, 5, 9},
			expected: domain.TrendIncreasing,
		},
		{
			name:     "shrinking counts",
			counts:   []int{9, 8, 2, 1},
			expected: domain.TrendDecreasing,
		},
		{
			name:     "within deadband",
			counts:   []int{10, 10, 11, 10},
			expected: domain.TrendStable,
		},
		{
			name:     "older half all zero",
			counts:   []int{0, 0, 3, 4},
			expected: domain.TrendIncreasing,
		},
		{
			name:     "all zero",
			counts:   []int{0, 0, 0, 0},
			expected: domain.TrendStable,
		},
		{
			name:     "odd length gives middle bucket to newer half",
			counts:   []int{2, 2, 2, 2, 2},
			expected: domain.TrendIncreasing, // newer sum 6 vs older 4
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTrend(tt.counts, 1.2, 0.8)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWeeklyCounts(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * 7 * 24 * time.Hour)

	times := []time.Time{
		start.Add(2 * time.Hour),                 // week 0
		start.Add(6 * 24 * time.Hour),            // week 0
		start.Add(8 * 24 * time.Hour),            // week 1
		start.Add(3*7*24*time.Hour + time.Hour),  // week 3
		start.Add(-time.Hour),                    // before range, dropped
		end.Add(time.Minute),                     // after range, dropped
	}

	counts := WeeklyCounts(times, start, end)
	assert.Equal(t, []int{2, 1, 0, 1}, counts)
}

func TestWeeklyCountsPartialWeek(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour) // one full week plus 3 days

	counts := WeeklyCounts([]time.Time{start.Add(9 * 24 * time.Hour)}, start, end)
	assert.Equal(t, []int{0, 1}, counts)
}

func TestWeeklyCountsInvalidRange(t *testing.T) {
	now := time.Now()
	assert.Nil(t, WeeklyCounts([]time.Time{now}, now, now))
}
