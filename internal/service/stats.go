package service

import (
	"math"
	"sort"
)

// Small numeric helpers shared by the analytics and recommendation services.
// The inputs here are short slices of session aggregates, so the simple
// two-pass formulas are fine.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev returns the sample standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// linearRegression fits y = intercept + slope*x by least squares over the
// index positions 0..n-1 and returns the slope and the correlation
// coefficient r. A degenerate series (fewer than two points, or zero
// variance on either axis) yields slope 0, r 0.
func linearRegression(y []float64) (slope, r float64) {
	n := float64(len(y))
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
		sumYY += v * v
	}

	denomX := n*sumXX - sumX*sumX
	if denomX == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denomX

	denomY := n*sumYY - sumY*sumY
	if denomY <= 0 {
		return slope, 0
	}
	r = (n*sumXY - sumX*sumY) / math.Sqrt(denomX*denomY)
	return slope, r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
