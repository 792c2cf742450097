package engine

import (
	"context"
	"fmt"
	"math"

	"decorana/domain/core"
	"decorana/domain/ordination"

	"gonum.org/v1/gonum/floats"
)

// extractAxis runs the reciprocal averaging fixed-point iteration for
// axis k (0-based), keeping the emerging axis decorrelated from all
// previously extracted axes.
//
// Species scores are seeded by column index. A seed nearly orthogonal to
// the dominant remaining eigenvector can make the iteration settle on a
// lower one; extraction order is therefore not trusted, and Run sorts
// basic-mode axes by eigenvalue afterwards.
func (e *Engine) extractAxis(ctx context.Context, w *weights, prev []*axis, k int) (*axis, error) {
	nSpecies := len(w.col)

	x := make([]float64, nSpecies)
	for j := range x {
		x[j] = float64(j)
	}
	if !standardize(x, w.col) {
		return nil, core.NewCollapsedAxisError(k + 1)
	}

	var (
		eigenvalue float64
		residual   = math.Inf(1)
	)
	for iter := 1; iter <= e.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("axis %d interrupted at iteration %d: %w", k+1, iter, err)
		}

		y, err := e.siteStep(w, prev, x, k)
		if err != nil {
			return nil, err
		}

		xNew := w.speciesAverages(y)
		// The reciprocal averaging operator is self-adjoint in the
		// column-weighted inner product, so basic mode deflates on the
		// species side, against every previously extracted species axis.
		if e.cfg.Analysis == ordination.AnalysisBasicRA {
			for _, p := range prev {
				gramSchmidt(xNew, p.species, w.col)
			}
		}
		// The variance left after a full averaging cycle on unit-variance
		// site scores is the contraction ratio of the iteration, i.e. the
		// eigenvalue of the axis.
		eigenvalue = weightedVariance(xNew, w.col)
		if !standardize(xNew, w.col) {
			return nil, core.NewCollapsedAxisError(k + 1)
		}

		// Power iteration is sign-blind; pin the direction to the previous
		// iterate so the displacement check sees real movement only.
		if weightedCovariance(xNew, x, w.col) < 0 {
			floats.Scale(-1, xNew)
		}

		residual = maxAbsDiff(xNew, x)
		x = xNew

		if residual < e.cfg.Tolerance {
			y, err := e.siteStep(w, prev, x, k)
			if err != nil {
				return nil, err
			}
			ax := &axis{
				site:       y,
				species:    x,
				eigenvalue: eigenvalue,
				length:     scoreRange(y),
				iterations: iter,
			}
			orientAxis(ax)
			ax.raw = append([]float64(nil), ax.site...)
			return ax, nil
		}
	}

	return nil, core.NewConvergenceError(k+1, e.cfg.MaxIterations, residual)
}

// siteStep computes standardized site scores from species scores,
// decorrelating them from every previously extracted axis: segmented
// detrending for detrended analysis, weighted Gram-Schmidt for basic
// reciprocal averaging. Prior axes enter through their raw converged
// scores, never the rescaled ones.
func (e *Engine) siteStep(w *weights, prev []*axis, species []float64, k int) ([]float64, error) {
	y := w.siteAverages(species)
	for _, p := range prev {
		if e.cfg.Analysis == ordination.AnalysisDetrended {
			detrend(y, p.raw, w.row, e.cfg.Segments)
		} else {
			gramSchmidt(y, p.raw, w.row)
		}
	}
	if !standardize(y, w.row) {
		return nil, core.NewCollapsedAxisError(k + 1)
	}
	return y, nil
}

// orientAxis fixes the arbitrary sign of a converged axis: the site with
// the largest absolute score ends up positive, first index winning ties.
func orientAxis(ax *axis) {
	idx, best := 0, 0.0
	for i, v := range ax.site {
		if a := math.Abs(v); a > best {
			best = a
			idx = i
		}
	}
	if ax.site[idx] < 0 {
		floats.Scale(-1, ax.site)
		floats.Scale(-1, ax.species)
	}
}
