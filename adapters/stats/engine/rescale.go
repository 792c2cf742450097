package engine

import "math"

// rescaleAxis equalizes species turnover along a converged detrended
// axis. Per cycle, the axis is cut into the configured number of
// segments, the local turnover of each segment is estimated as the
// mass-weighted standard deviation of species scores about the site
// scores of that segment, and each segment is stretched in proportion to
// its local turnover. The stretched scores are restandardized, so axis
// units stay comparable across the gradient.
//
// An axis whose gradient length is below cfg.ShortestGradient is left
// untouched; rescaling a short axis only amplifies noise.
func (e *Engine) rescaleAxis(w *weights, ax *axis) {
	for cycle := 0; cycle < e.cfg.RescalingCycles; cycle++ {
		if ax.length < e.cfg.ShortestGradient {
			return
		}
		if !e.rescaleCycle(w, ax) {
			return
		}
	}
}

// rescaleCycle runs one stretch pass, reporting false when the axis has
// no spread left to work with.
func (e *Engine) rescaleCycle(w *weights, ax *axis) bool {
	segments := e.cfg.Segments
	lo, hi := minMax(ax.site)
	if hi == lo {
		return false
	}
	width := (hi - lo) / float64(segments)

	turnover := localTurnover(w, ax, lo, width, segments)
	fillEmptySegments(turnover)
	smoothSegments(turnover)

	// Piecewise-linear monotone remap: each segment's new width is its
	// local turnover, so high-turnover stretches of the gradient expand.
	bounds := make([]float64, segments+1)
	for s := 0; s < segments; s++ {
		bounds[s+1] = bounds[s] + turnover[s]
	}
	if bounds[segments] == 0 {
		return false
	}

	for i, v := range ax.site {
		s := segmentIndex(v, lo, width, segments)
		frac := (v - (lo + float64(s)*width)) / width
		ax.site[i] = bounds[s] + frac*(bounds[s+1]-bounds[s])
	}
	if !standardize(ax.site, w.row) {
		return false
	}

	ax.species = w.speciesAverages(ax.site)
	standardize(ax.species, w.col)
	ax.length = scoreRange(ax.site)
	return true
}

// localTurnover estimates per-segment species turnover as the
// cell-mass-weighted standard deviation of species scores about site
// scores, segment by segment along the axis. Empty segments are NaN.
func localTurnover(w *weights, ax *axis, lo, width float64, segments int) []float64 {
	sums := make([]float64, segments)
	masses := make([]float64, segments)

	for i, site := range ax.site {
		s := segmentIndex(site, lo, width, segments)
		for j, sp := range ax.species {
			mass := w.cell.At(i, j)
			if mass == 0 {
				continue
			}
			d := sp - site
			sums[s] += mass * d * d
			masses[s] += mass
		}
	}

	out := make([]float64, segments)
	for s := range out {
		if masses[s] > 0 {
			out[s] = math.Sqrt(sums[s] / masses[s])
		} else {
			out[s] = math.NaN()
		}
	}
	return out
}
