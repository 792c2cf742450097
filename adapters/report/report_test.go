package report

import (
	"strings"
	"testing"

	"decorana/domain/core"
	"decorana/domain/ordination"

	"github.com/stretchr/testify/require"
)

func sampleResult() *ordination.Result {
	return &ordination.Result{
		SiteScores:    [][]float64{{-1.0, 0.5}, {0.0, -1.2}, {1.0, 0.7}},
		SpeciesScores: [][]float64{{-0.8, 0.2}, {0.8, -0.2}},
		Eigenvalues:   []float64{0.6123, 0.2045},
		AxisLengths:   []float64{3.1, 1.7},
		Iterations:    []int{12, 31},
		Labels: ordination.Labels{
			Sites:   []string{"s1", "s2", "s3"},
			Species: []string{"a", "b"},
		},
	}
}

func TestMarkdown_ContainsRunSummary(t *testing.T) {
	cfg := ordination.DefaultConfig()
	md, err := Markdown(core.RunID("run-1"), cfg, sampleResult())
	require.NoError(t, err)

	require.Contains(t, md, "# Ordination run run-1")
	require.Contains(t, md, "Analysis: detrended")
	require.Contains(t, md, "3 sites, 2 species, 2 axes extracted")
	require.Contains(t, md, "| 1 | 0.6123 | 3.10 | 12 |")
	require.Contains(t, md, "| 2 | 0.2045 | 1.70 | 31 |")
	require.Contains(t, md, "## Site scores")
	require.Contains(t, md, "## Species scores")
}

func TestHTML_RendersTables(t *testing.T) {
	md, err := Markdown(core.NewRunID(), ordination.DefaultConfig(), sampleResult())
	require.NoError(t, err)

	out := string(HTML(md))
	require.True(t, strings.Contains(out, "<table>"))
	require.True(t, strings.Contains(out, "Eigenvalue"))
}
