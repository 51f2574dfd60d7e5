// Package stats provides the numeric primitives used by the indicator calculators.
// Undefined results are NaN so they cannot be mistaken for a computed zero.
package stats

import (
	"math"
	"sort"
)

// Defined reports whether x is a computed value (not the NaN sentinel)
func Defined(x float64) bool {
	return !math.IsNaN(x)
}

// Mean returns the arithmetic mean, NaN on empty input
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation (÷N), NaN on empty input
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	mean := Mean(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

// SMA returns the simple moving average aligned with xs.
// Indices before window-1 are NaN.
func SMA(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(xs) < window {
		return out
	}

	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// PercentGrowth returns (to-from)/|from| as a fraction.
// A zero base divides by 1, so the result is the raw delta.
func PercentGrowth(from, to float64) float64 {
	base := math.Abs(from)
	if base == 0 {
		base = 1
	}
	return (to - from) / base
}

// TotalGrowthRate compares the last value with the one period steps earlier.
// A zero base divides by 1. ok is false when the series is too short.
func TotalGrowthRate(series []float64, period int) (float64, bool) {
	if period <= 0 || len(series) < period+1 {
		return 0, false
	}
	latest := series[len(series)-1]
	base := series[len(series)-1-period]
	divisor := base
	if divisor == 0 {
		divisor = 1
	}
	return (latest - base) / divisor, true
}

// Median returns the median of the non-NaN values; ok is false when none remain
func Median(xs []float64) (float64, bool) {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if Defined(x) {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}

	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}

// StrictlyIncreasing reports whether every value exceeds its predecessor
func StrictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}

// Round rounds to the given number of decimal places
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Clamp bounds x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
