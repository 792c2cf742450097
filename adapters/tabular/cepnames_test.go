package tabular

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCEPNames_Abbreviation(t *testing.T) {
	in := []string{
		"Bellis perennis",
		"Medicago",
		"Poa",
		"Vicia sativa ssp.",
		"Achillea millefolium agg.",
	}
	got := CEPNames(in)
	require.Equal(t, []string{
		"Bellpere",
		"Medicago",
		"Poa",
		"Vicissp",
		"Achiagg",
	}, got)

	for _, name := range got {
		require.LessOrEqual(t, len(name), 8)
	}
}

func TestCEPNames_CollisionsGetCounters(t *testing.T) {
	in := []string{
		"Bellis perennis",
		"Bellis perennifolia",
		"Bellis peregrina",
	}
	got := CEPNames(in)
	require.Equal(t, "Bellpere", got[0])
	require.Equal(t, "Bellper1", got[1])
	require.Equal(t, "Bellper2", got[2])

	seen := map[string]bool{}
	for _, name := range got {
		require.False(t, seen[name], "duplicate abbreviation %q", name)
		seen[name] = true
	}
}

func TestCEPNames_Deterministic(t *testing.T) {
	in := []string{"Carex flava", "Carex flacca", "Carex flava"}
	require.Equal(t, CEPNames(in), CEPNames(in))
}
