package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Weighted moment helpers. Variances here are population-weighted
// (divide by the weight total), matching the normalization contract of
// the ordination axes, so gonum's unbiased stat.Variance is not used.

func weightedMean(x, w []float64) float64 {
	return stat.Mean(x, w)
}

func weightedVariance(x, w []float64) float64 {
	mean := stat.Mean(x, w)
	num, sumW := 0.0, 0.0
	for i, v := range x {
		d := v - mean
		num += w[i] * d * d
		sumW += w[i]
	}
	if sumW == 0 {
		return 0
	}
	return num / sumW
}

func weightedCovariance(x, y, w []float64) float64 {
	mx := stat.Mean(x, w)
	my := stat.Mean(y, w)
	num, sumW := 0.0, 0.0
	for i := range x {
		num += w[i] * (x[i] - mx) * (y[i] - my)
		sumW += w[i]
	}
	if sumW == 0 {
		return 0
	}
	return num / sumW
}

func weightedCorrelation(x, y, w []float64) float64 {
	vx := weightedVariance(x, w)
	vy := weightedVariance(y, w)
	if vx == 0 || vy == 0 {
		return 0
	}
	return weightedCovariance(x, y, w) / math.Sqrt(vx*vy)
}

// standardize centers x at weighted mean zero and scales it to weighted
// variance one, in place. It reports false when the scores have collapsed
// to zero variance and no axis can be carried.
func standardize(x, w []float64) bool {
	mean := stat.Mean(x, w)
	for i := range x {
		x[i] -= mean
	}
	v := weightedVariance(x, w)
	if v <= 0 || math.IsNaN(v) {
		return false
	}
	floats.Scale(1/math.Sqrt(v), x)
	return true
}

// gramSchmidt removes the weighted projection of y onto a previously
// extracted, standardized axis p.
func gramSchmidt(y, p, w []float64) {
	v := weightedVariance(p, w)
	if v == 0 {
		return
	}
	coef := weightedCovariance(y, p, w) / v
	for i := range y {
		y[i] -= coef * p[i]
	}
}

func maxAbsDiff(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func scoreRange(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Max(x) - floats.Min(x)
}
