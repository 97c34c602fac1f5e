// Package stats computes the summary statistics shown next to the map.
package stats

import (
	"math"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"
)

// Finite returns the values that are neither NaN nor infinite. Missing
// dataset values are NaN and must never reach a sum.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Sum returns the sum of the finite values
func Sum(values []float64) float64 {
	finite := Finite(values)
	if len(finite) == 0 {
		return 0
	}
	return moremath.Sample{Xs: finite}.Sum()
}

// Mean calculates the arithmetic mean of the finite values
func Mean(values []float64) float64 {
	finite := Finite(values)
	if len(finite) == 0 {
		return 0
	}
	return moremath.Mean(finite)
}

// Median calculates the median of the finite values
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Quantile returns the q-th quantile (0-1) of the finite values, 0 when
// there are none. Interpolation follows moremath.Sample.Quantile.
func Quantile(values []float64, q float64) float64 {
	finite := Finite(values)
	if len(finite) == 0 {
		return 0
	}
	q = math.Max(0, math.Min(1, q))
	sort.Float64s(finite)
	return moremath.Sample{Xs: finite, Sorted: true}.Quantile(q)
}

// Percent returns part/total*100. The second result is false when total is
// zero; the percentage is then reported as 0 instead of a non-finite value.
func Percent(part, total float64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	p := part / total * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}
