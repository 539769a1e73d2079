package analytics

import (
	"time"

	"github.com/spec-kit/devtrack/internal/domain"
)

// epsilon guards the ratio denominator when the older half has no counts.
const epsilon = 1e-9

// ClassifyTrend classifies an ordered series of equal-window counts by
// comparing the newer half against the older half. Fewer than 2 buckets is
// always stable.
func ClassifyTrend(counts []int, increaseRatio, decreaseRatio float64) domain.TrendDirection {
	if len(counts) < 2 {
		return domain.TrendStable
	}

	mid := len(counts) / 2
	var older, newer float64
	for _, n := range counts[:mid] {
		older += float64(n)
	}
	for _, n := range counts[mid:] {
		newer += float64(n)
	}

	if older < epsilon && newer < epsilon {
		return domain.TrendStable
	}

	denom := older
	if denom < epsilon {
		denom = epsilon
	}
	ratio := newer / denom

	switch {
	case ratio > increaseRatio:
		return domain.TrendIncreasing
	case ratio < decreaseRatio:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// WeeklyCounts buckets timestamps into consecutive 7-day windows covering
// [start, end). Timestamps outside the range are dropped.
func WeeklyCounts(times []time.Time, start, end time.Time) []int {
	if !start.Before(end) {
		return nil
	}
	week := 7 * 24 * time.Hour
	buckets := int(end.Sub(start) / week)
	if end.Sub(start)%week != 0 {
		buckets++
	}
	counts := make([]int, buckets)
	for _, t := range times {
		if t.Before(start) || !t.Before(end) {
			continue
		}
		idx := int(t.Sub(start) / week)
		counts[idx]++
	}
	return counts
}
