package ordination

import (
	"decorana/domain/core"

	"gonum.org/v1/gonum/mat"
)

// AbundanceMatrix is a dense non-negative sites x species matrix.
// Rows are sites (samples), columns are species (taxa). It is immutable
// after construction: the engine treats it as read-only input and every
// accessor returns copies or scalars.
type AbundanceMatrix struct {
	data *mat.Dense
	rows int
	cols int

	rowTotals []float64
	colTotals []float64
	total     float64
}

// NewAbundanceMatrix validates and wraps raw abundance values.
//
// The matrix must have at least 2 rows and 2 columns, every entry must be
// non-negative, and every row and column must contain at least one non-zero
// entry. Degenerate input is rejected rather than silently filtered; callers
// holding raw field data can pre-filter with DropEmpty first.
func NewAbundanceMatrix(values [][]float64) (*AbundanceMatrix, error) {
	rows := len(values)
	if rows < 2 {
		return nil, core.NewShapeError(rows, 0)
	}
	cols := len(values[0])
	if cols < 2 {
		return nil, core.NewShapeError(rows, cols)
	}

	data := mat.NewDense(rows, cols, nil)
	colTotals := make([]float64, cols)
	rowTotals := make([]float64, rows)
	total := 0.0

	for i, row := range values {
		if len(row) != cols {
			return nil, core.NewConfigError("matrix", "has ragged rows")
		}
		for j, v := range row {
			if v < 0 {
				return nil, core.NewNegativeEntryError(i, j, v)
			}
			data.Set(i, j, v)
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
		if rowTotals[i] == 0 {
			return nil, core.NewEmptyRowError(i)
		}
	}
	for j, t := range colTotals {
		if t == 0 {
			return nil, core.NewEmptyColumnError(j)
		}
	}

	return &AbundanceMatrix{
		data:      data,
		rows:      rows,
		cols:      cols,
		rowTotals: rowTotals,
		colTotals: colTotals,
		total:     total,
	}, nil
}

// Rows returns the number of sites.
func (m *AbundanceMatrix) Rows() int { return m.rows }

// Columns returns the number of species.
func (m *AbundanceMatrix) Columns() int { return m.cols }

// At returns the abundance of species j at site i.
func (m *AbundanceMatrix) At(i, j int) float64 { return m.data.At(i, j) }

// RowTotal returns the total abundance recorded at site i.
func (m *AbundanceMatrix) RowTotal(i int) float64 { return m.rowTotals[i] }

// ColumnTotal returns the total abundance of species j across all sites.
func (m *AbundanceMatrix) ColumnTotal(j int) float64 { return m.colTotals[j] }

// GrandTotal returns the sum of all abundances.
func (m *AbundanceMatrix) GrandTotal() float64 { return m.total }

// Values returns a fresh copy of the raw matrix, row-major.
func (m *AbundanceMatrix) Values() [][]float64 {
	out := make([][]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = make([]float64, m.cols)
		for j := 0; j < m.cols; j++ {
			out[i][j] = m.data.At(i, j)
		}
	}
	return out
}

// Dense returns a copy of the matrix as a gonum Dense for callers that
// want to run their own linear algebra on it.
func (m *AbundanceMatrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(m.data)
}

// DropEmpty removes all-zero rows and columns from raw values before
// matrix construction. It returns the filtered values plus the indices of
// the kept rows and columns, so positional labels can be filtered to match.
func DropEmpty(values [][]float64) (filtered [][]float64, keptRows, keptCols []int) {
	if len(values) == 0 {
		return nil, nil, nil
	}
	cols := len(values[0])

	colHasData := make([]bool, cols)
	for _, row := range values {
		for j, v := range row {
			if j < cols && v != 0 {
				colHasData[j] = true
			}
		}
	}
	for j, ok := range colHasData {
		if ok {
			keptCols = append(keptCols, j)
		}
	}

	for i, row := range values {
		hasData := false
		for _, v := range row {
			if v != 0 {
				hasData = true
				break
			}
		}
		if !hasData {
			continue
		}
		keptRows = append(keptRows, i)
		out := make([]float64, 0, len(keptCols))
		for _, j := range keptCols {
			out = append(out, row[j])
		}
		filtered = append(filtered, out)
	}
	return filtered, keptRows, keptCols
}

// Labels carries positional site and species names through a run unchanged.
type Labels struct {
	Sites   []string `json:"sites"`
	Species []string `json:"species"`
}

// Result holds the ordination output for one engine run.
//
// SiteScores is n_sites x axes, SpeciesScores is n_species x axes, both
// row-major. Basic reciprocal averaging orders axes by decreasing
// eigenvalue; detrended axes come in extraction order, where detrending
// and rescaling can perturb strict monotonicity.
type Result struct {
	SiteScores    [][]float64 `json:"site_scores"`
	SpeciesScores [][]float64 `json:"species_scores"`

	// Eigenvalues holds the per-axis variance contraction ratio of the
	// reciprocal averaging step, a measure of explained inertia.
	Eigenvalues []float64 `json:"eigenvalues"`

	// AxisLengths holds per-axis gradient lengths in weighted
	// standard-deviation units, before final standardization.
	AxisLengths []float64 `json:"axis_lengths"`

	// Iterations records how many reciprocal averaging passes each axis took.
	Iterations []int `json:"iterations"`

	Labels Labels `json:"labels"`
}

// Axes returns the number of extracted axes.
func (r *Result) Axes() int { return len(r.Eigenvalues) }

// SiteAxis returns the site scores of one axis (0-based) as a fresh slice.
func (r *Result) SiteAxis(axis int) []float64 {
	out := make([]float64, len(r.SiteScores))
	for i, row := range r.SiteScores {
		out[i] = row[axis]
	}
	return out
}

// SpeciesAxis returns the species scores of one axis (0-based) as a fresh slice.
func (r *Result) SpeciesAxis(axis int) []float64 {
	out := make([]float64, len(r.SpeciesScores))
	for i, row := range r.SpeciesScores {
		out[i] = row[axis]
	}
	return out
}
