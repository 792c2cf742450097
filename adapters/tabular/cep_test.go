package tabular

import (
	"bytes"
	"strings"
	"testing"

	"decorana/domain/ordination"

	"github.com/stretchr/testify/require"
)

func TestCEPRoundTrip(t *testing.T) {
	values := [][]float64{
		{3, 0, 7, 0, 1, 2, 9, 4}, // 6 couplets, spills onto a second line
		{0, 5, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 0, 0, 0, 0, 8},
	}
	labels := ordination.Labels{
		Sites:   []string{"meadow1", "meadow2", "forest1"},
		Species: []string{"sp a", "sp b", "sp c", "sp d", "sp e", "sp f", "sp g", "sp h"},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCEP(&buf, "test data", values, labels))

	decoded, gotLabels, err := DecodeCEP(&buf)
	require.NoError(t, err)
	require.Equal(t, values, decoded)
	require.Equal(t, labels.Sites, gotLabels.Sites)
	require.Len(t, gotLabels.Species, len(labels.Species))
}

func TestEncodeCEP_Layout(t *testing.T) {
	values := [][]float64{
		{2, 0, 4},
		{0, 1, 0},
	}
	labels := ordination.Labels{
		Sites:   []string{"s1", "s2"},
		Species: []string{"a", "b", "c"},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCEP(&buf, "title line", values, labels))

	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, "title line", lines[0])
	require.Equal(t, "(I3,5(I3,F3.0))", lines[1])
	require.Equal(t, "  5 ", lines[2])
	// Row 1 holds couplets (1,2) and (3,4); row 2 holds (2,1).
	require.Equal(t, "  1  1  2  3  4", lines[3])
	require.Equal(t, "  2  2  1", lines[4])
	require.Equal(t, "  0 ", lines[5])
}

func TestDecodeCEP_Truncated(t *testing.T) {
	_, _, err := DecodeCEP(strings.NewReader("title only\n"))
	require.Error(t, err)
}

func TestDecodeCEP_NoData(t *testing.T) {
	in := "t\n(I3,5(I3,F3.0))\n  5 \n  0 \n"
	_, _, err := DecodeCEP(strings.NewReader(in))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no data couplets")
}
