package engine

import "math"

// detrend removes the dependence of scores y on a previously extracted
// axis p by subtracting segmented local means, which is what corrects the
// arch effect of plain reciprocal averaging.
//
// Segment policy: the range of p is split into `segments` equal-width
// intervals, half-open [lo, hi) with the topmost interval closed, so a
// site tied exactly on an interior boundary falls into the upper segment
// and the maximum score stays inside the last one. Per-segment means are
// weighted by site mass; empty segments take linearly interpolated means
// from their nearest occupied neighbors; the mean profile is smoothed
// twice with a (1/4, 1/2, 1/4) running kernel before subtraction.
//
// Segment means remove the arch shape only approximately, so the linear
// component left in y is projected out exactly afterwards.
func detrend(y, p, w []float64, segments int) {
	lo, hi := minMax(p)
	if hi == lo {
		return
	}
	width := (hi - lo) / float64(segments)

	sums := make([]float64, segments)
	masses := make([]float64, segments)
	for i, v := range p {
		s := segmentIndex(v, lo, width, segments)
		sums[s] += w[i] * y[i]
		masses[s] += w[i]
	}

	means := make([]float64, segments)
	for s := range means {
		if masses[s] > 0 {
			means[s] = sums[s] / masses[s]
		} else {
			means[s] = math.NaN()
		}
	}
	fillEmptySegments(means)
	smoothSegments(means)
	smoothSegments(means)

	for i, v := range p {
		y[i] -= means[segmentIndex(v, lo, width, segments)]
	}
	gramSchmidt(y, p, w)
}

func segmentIndex(v, lo, width float64, segments int) int {
	s := int((v - lo) / width)
	if s < 0 {
		return 0
	}
	if s >= segments {
		return segments - 1
	}
	return s
}

func minMax(x []float64) (lo, hi float64) {
	lo, hi = x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// fillEmptySegments replaces NaN entries by linear interpolation between
// the nearest occupied segments; leading and trailing gaps copy the
// nearest occupied value.
func fillEmptySegments(means []float64) {
	n := len(means)

	prev := -1
	for s := 0; s < n; s++ {
		if math.IsNaN(means[s]) {
			continue
		}
		switch {
		case prev < 0:
			for t := 0; t < s; t++ {
				means[t] = means[s]
			}
		case prev < s-1:
			step := (means[s] - means[prev]) / float64(s-prev)
			for t := prev + 1; t < s; t++ {
				means[t] = means[prev] + step*float64(t-prev)
			}
		}
		prev = s
	}
	if prev < 0 {
		for s := range means {
			means[s] = 0
		}
		return
	}
	for t := prev + 1; t < n; t++ {
		means[t] = means[prev]
	}
}

// smoothSegments applies one (1/4, 1/2, 1/4) running-average pass in
// place. End segments are kept as they are, which leaves linear mean
// profiles intact instead of bending them at the boundaries.
func smoothSegments(means []float64) {
	n := len(means)
	if n < 3 {
		return
	}
	smoothed := make([]float64, n)
	smoothed[0] = means[0]
	smoothed[n-1] = means[n-1]
	for s := 1; s < n-1; s++ {
		smoothed[s] = 0.25*means[s-1] + 0.5*means[s] + 0.25*means[s+1]
	}
	copy(means, smoothed)
}
