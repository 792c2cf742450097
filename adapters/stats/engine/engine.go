package engine

import (
	"context"
	"sort"

	"decorana/domain/core"
	"decorana/domain/ordination"
)

// Engine runs detrended correspondence analysis or basic reciprocal
// averaging over an abundance matrix. It holds only configuration: every
// call to Run is independent and reentrant, with no shared mutable state
// and no side effects.
type Engine struct {
	cfg ordination.Config
}

// New creates an engine with a normalized copy of cfg. The configuration
// is validated on Run, before any computation starts.
func New(cfg ordination.Config) *Engine {
	return &Engine{cfg: cfg.Normalize()}
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() ordination.Config {
	return e.cfg
}

// Run computes up to cfg.Axes ordination axes for the matrix.
//
// Axes are extracted one at a time by reciprocal averaging. For detrended
// analysis each axis beyond the first is decorrelated from its
// predecessors by segmented detrending inside the iteration loop, and
// optionally rescaled; for basic reciprocal averaging, orthogonality is
// maintained by weighted Gram-Schmidt instead and no detrending or
// rescaling runs. The context is checked between iterations so callers
// can impose a wall-clock budget.
func (e *Engine) Run(ctx context.Context, m *ordination.AbundanceMatrix) (*ordination.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, core.NewShapeError(0, 0)
	}

	// The smaller dimension bounds the number of non-trivial axes. Asking
	// for more axes than the matrix can carry is degenerate input, except
	// that a single-axis request is honored whenever one axis exists.
	maxAxes := e.cfg.Axes
	if n := min(m.Rows(), m.Columns()) - 1; n < maxAxes {
		maxAxes = n
	}
	if maxAxes < 1 || (maxAxes < 2 && e.cfg.Axes >= 2) {
		return nil, core.NewShapeError(m.Rows(), m.Columns())
	}

	w := newWeights(m, e.cfg.DownweightRare)

	axes := make([]*axis, 0, maxAxes)
	for k := 0; k < maxAxes; k++ {
		ax, err := e.extractAxis(ctx, w, axes, k)
		if err != nil {
			return nil, err
		}
		if e.cfg.Analysis == ordination.AnalysisDetrended && e.cfg.RescalingCycles > 0 {
			e.rescaleAxis(w, ax)
		}
		axes = append(axes, ax)
	}

	// The deflated iteration can surface the remaining eigenvectors out of
	// eigenvalue order when the seed is nearly orthogonal to the dominant
	// one; the output contract is decreasing eigenvalues.
	if e.cfg.Analysis == ordination.AnalysisBasicRA {
		sort.SliceStable(axes, func(i, j int) bool {
			return axes[i].eigenvalue > axes[j].eigenvalue
		})
	}

	return assembleResult(w, axes), nil
}

// assembleResult standardizes the converged axes and packs them into the
// output matrices, sites row-major then species row-major.
func assembleResult(w *weights, axes []*axis) *ordination.Result {
	nSites := len(w.row)
	nSpecies := len(w.col)
	res := &ordination.Result{
		SiteScores:    newScoreMatrix(nSites, len(axes)),
		SpeciesScores: newScoreMatrix(nSpecies, len(axes)),
		Eigenvalues:   make([]float64, len(axes)),
		AxisLengths:   make([]float64, len(axes)),
		Iterations:    make([]int, len(axes)),
	}
	for k, ax := range axes {
		// Final pass: sites standardized on row weights, species recomputed
		// as weighted averages of the final site scores and standardized on
		// column weights.
		standardize(ax.site, w.row)
		species := w.speciesAverages(ax.site)
		standardize(species, w.col)

		for i := range ax.site {
			res.SiteScores[i][k] = ax.site[i]
		}
		for j := range species {
			res.SpeciesScores[j][k] = species[j]
		}
		res.Eigenvalues[k] = ax.eigenvalue
		res.AxisLengths[k] = ax.length
		res.Iterations[k] = ax.iterations
	}
	return res
}

func newScoreMatrix(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// axis is the internal state of one extracted ordination axis. raw holds
// the site scores at convergence, untouched by rescaling: later axes
// decorrelate against raw, so the nonlinear remap of one axis cannot
// destabilize the fixed point of the next.
type axis struct {
	site       []float64
	raw        []float64
	species    []float64
	eigenvalue float64
	length     float64
	iterations int
}
