// Package breaks maps continuous scores to discrete choropleth bands.
package breaks

import (
	"math"
	"sort"
)

// Defaults used when a caller passes a non-positive bucket or step count.
const (
	DefaultBuckets = 5
	DefaultSteps   = 7
)

// MaxBuckets bounds the bucket or step count. Larger requests are clamped.
const MaxBuckets = 100

// PercentileBreaks returns one threshold per bucket, each the value at the
// bucket's starting percentile, so every band holds roughly the same number
// of entities regardless of skew. The first threshold is always the minimum.
// NaN and infinite values are ignored. Empty input yields buckets zeros.
func PercentileBreaks(values []float64, buckets int) []float64 {
	buckets = clampCount(buckets, DefaultBuckets)
	out := make([]float64, buckets)
	sorted := finite(values)
	n := len(sorted)
	if n == 0 {
		return out
	}
	sort.Float64s(sorted)

	for i := range out {
		out[i] = sorted[i*n/buckets]
	}
	return out
}

// DynamicBreaks splits [0, max(values, 1)] into steps equal intervals and
// returns their rounded upper bounds. Repeated breakpoints are dropped and
// the tail is padded by counting up from the last value, so the result is
// always strictly ascending with exactly steps entries. NaN and infinite
// values are ignored.
func DynamicBreaks(values []float64, steps int) []float64 {
	steps = clampCount(steps, DefaultSteps)

	maxVal := 1.0
	for _, v := range values {
		if !math.IsInf(v, 0) && v > maxVal {
			maxVal = v
		}
	}

	out := make([]float64, 0, steps)
	for i := 1; i <= steps; i++ {
		b := math.Round(maxVal * float64(i) / float64(steps))
		if len(out) > 0 && b <= out[len(out)-1] {
			continue
		}
		out = append(out, b)
	}
	for len(out) < steps {
		out = append(out, out[len(out)-1]+1)
	}
	return out
}

func clampCount(n, def int) int {
	switch {
	case n <= 0:
		return def
	case n > MaxBuckets:
		return MaxBuckets
	}
	return n
}

// finite returns a copy of values without NaN or infinities.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}
