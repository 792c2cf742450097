package engine

import (
	"math"
	"testing"

	"decorana/domain/ordination"

	"github.com/stretchr/testify/require"
)

// TestDetrend_RemovesArch feeds detrend a pure quadratic arch and checks
// the residual no longer tracks the gradient or its square.
func TestDetrend_RemovesArch(t *testing.T) {
	const n = 200
	p := make([]float64, n)
	y := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = float64(i) / float64(n-1) * 10
		y[i] = p[i]*p[i] - 5*p[i] // arch: quadratic in the gradient
		w[i] = 1
	}

	detrend(y, p, w, ordination.DefaultSegments)

	arch := make([]float64, n)
	for i := range p {
		arch[i] = p[i] * p[i]
	}
	// The final projection makes the linear component vanish; the
	// quadratic remainder is within-segment ripple.
	require.Less(t, math.Abs(weightedCorrelation(y, p, w)), 1e-9)
	require.Less(t, math.Abs(weightedCorrelation(y, arch, w)), 0.15)
}

func TestSmoothSegments_PreservesLinearProfile(t *testing.T) {
	means := []float64{1, 2, 3, 4, 5}
	smoothSegments(means)
	for i, want := range []float64{1, 2, 3, 4, 5} {
		require.InDelta(t, want, means[i], 1e-12, "segment %d", i)
	}
}

func TestDetrend_ConstantGradientIsNoop(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	p := []float64{2, 2, 2, 2}
	w := []float64{1, 1, 1, 1}

	detrend(y, p, w, ordination.DefaultSegments)
	require.Equal(t, []float64{1, 2, 3, 4}, y)
}

func TestSegmentIndex_BoundaryPolicy(t *testing.T) {
	// Range [0,10) in 10 segments: interior boundaries belong to the
	// upper segment, the maximum stays inside the last one.
	cases := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{0.999, 0},
		{1, 1},
		{5, 5},
		{9.999, 9},
		{10, 9},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, segmentIndex(tc.v, 0, 1, 10), "value %v", tc.v)
	}
}

func TestFillEmptySegments_Interpolates(t *testing.T) {
	nan := math.NaN()
	means := []float64{nan, 2, nan, nan, 8, nan}

	fillEmptySegments(means)
	require.Equal(t, []float64{2, 2, 4, 6, 8, 8}, means)
}

func TestDownweighting_ReducesRareSpeciesOnly(t *testing.T) {
	values := [][]float64{
		{10, 10, 1, 0.5},
		{10, 10, 0, 0.5},
		{10, 10, 0, 0},
	}
	m, err := ordination.NewAbundanceMatrix(values)
	require.NoError(t, err)

	plain := newWeights(m, false)
	down := newWeights(m, true)

	// Common species (totals 30) keep their mass.
	require.InDelta(t, plain.col[0], down.col[0], 1e-12)
	require.InDelta(t, plain.col[1], down.col[1], 1e-12)

	// Rare species fall below max/5 = 6 and shrink proportionally.
	require.Less(t, down.col[2], plain.col[2])
	require.Less(t, down.col[3], plain.col[3])
	require.InDelta(t, plain.col[2]*plain.col[2]/6.0, down.col[2], 1e-9)
}

func TestStandardize_ZeroVariance(t *testing.T) {
	x := []float64{3, 3, 3}
	w := []float64{1, 2, 1}
	require.False(t, standardize(x, w))
}

func TestStandardize_MeanAndVariance(t *testing.T) {
	x := []float64{1, 4, 9, 16}
	w := []float64{1, 2, 3, 4}
	require.True(t, standardize(x, w))
	require.InDelta(t, 0, weightedMean(x, w), 1e-12)
	require.InDelta(t, 1, weightedVariance(x, w), 1e-12)
}
