package analytics

import (
	"fmt"
	"math"
	"sort"
)

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}

// sampleStdDev uses the n-1 denominator and is 0 for fewer than two values.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// coefficientOfVariation is stddev/mean, or +Inf when the mean is not positive.
func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m <= 0 {
		return math.Inf(1)
	}
	return sampleStdDev(xs) / m
}

// percentile interpolates linearly between closest ranks on the sorted
// sample, rank = p/100 * (n-1). This is the R-7 definition, also the NumPy default.
func percentile(xs []float64, p float64) (float64, error) {
	if p < 1 || p > 100 {
		return 0, fmt.Errorf("percentile must be between 1 and 100, got %v", p)
	}
	if len(xs) == 0 {
		return 0, fmt.Errorf("percentile of an empty sample")
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo]), nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
