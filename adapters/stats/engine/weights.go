package engine

import (
	"decorana/domain/ordination"

	"gonum.org/v1/gonum/mat"
)

// downweightThreshold is the fraction of the commonest species' total
// below which a rare species is downweighted, after Hill (1979).
const downweightThreshold = 5.0

// weights holds the (possibly downweighted) abundance matrix together
// with its row and column totals, which act as site and species masses
// throughout the run.
type weights struct {
	cell *mat.Dense
	row  []float64
	col  []float64
}

func newWeights(m *ordination.AbundanceMatrix, downweightRare bool) *weights {
	cell := m.Dense()
	rows, cols := cell.Dims()

	if downweightRare {
		applyDownweighting(cell)
	}

	w := &weights{
		cell: cell,
		row:  make([]float64, rows),
		col:  make([]float64, cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := cell.At(i, j)
			w.row[i] += v
			w.col[j] += v
		}
	}
	return w
}

// applyDownweighting scales down columns whose total abundance falls
// below a fifth of the commonest species, in proportion to the shortfall.
func applyDownweighting(cell *mat.Dense) {
	rows, cols := cell.Dims()

	totals := make([]float64, cols)
	maxTotal := 0.0
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			totals[j] += cell.At(i, j)
		}
		if totals[j] > maxTotal {
			maxTotal = totals[j]
		}
	}

	cutoff := maxTotal / downweightThreshold
	for j := 0; j < cols; j++ {
		if totals[j] >= cutoff || totals[j] == 0 {
			continue
		}
		factor := totals[j] / cutoff
		for i := 0; i < rows; i++ {
			cell.Set(i, j, cell.At(i, j)*factor)
		}
	}
}

// siteAverages computes site scores as the abundance-weighted average of
// species scores. Scaling a whole row by a positive constant cancels out
// here, which is the row-scaling invariance of reciprocal averaging.
func (w *weights) siteAverages(species []float64) []float64 {
	rows := len(w.row)
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j, x := range species {
			sum += w.cell.At(i, j) * x
		}
		out[i] = sum / w.row[i]
	}
	return out
}

// speciesAverages computes species scores as the abundance-weighted
// average of site scores.
func (w *weights) speciesAverages(site []float64) []float64 {
	cols := len(w.col)
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i, y := range site {
			sum += w.cell.At(i, j) * y
		}
		out[j] = sum / w.col[j]
	}
	return out
}
