package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"decorana/domain/ordination"
)

// Cornell Ecology Programs condensed format: data points are entered as
// couplets of species number and abundance, each line starting with the
// sample number, at most 5 couplets per line, followed by 8-character
// label blocks for species and then sites, 10 per line. This codec exists
// for interoperability with other ecology tools and is independent of the
// ordination engine.

const (
	cepCoupletsPerLine = 5
	cepLabelsPerLine   = 10
	cepLabelWidth      = 8
	cepFormatLine      = "(I3,5(I3,F3.0))"
)

// EncodeCEP writes values and labels in the condensed CEP format.
// Abundances are rounded to whole numbers by the F3.0 field, as the
// historical format requires.
func EncodeCEP(w io.Writer, title string, values [][]float64, labels ordination.Labels) error {
	bw := bufio.NewWriter(w)

	if title == "" {
		title = "decorana export"
	}
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "%s\n", cepFormatLine)
	fmt.Fprintf(bw, "%3d \n", cepCoupletsPerLine)

	for i, row := range values {
		written := 0
		onLine := false
		for j, v := range row {
			if v == 0 {
				continue
			}
			if !onLine {
				fmt.Fprintf(bw, "%3d", i+1)
				onLine = true
			}
			fmt.Fprintf(bw, "%3d%3.0f", j+1, v)
			written++
			if written == cepCoupletsPerLine {
				fmt.Fprint(bw, "\n")
				written = 0
				onLine = false
			}
		}
		if written != 0 {
			fmt.Fprint(bw, "\n")
		}
	}
	fmt.Fprintf(bw, "%3d \n", 0)

	writeLabelBlock(bw, CEPNames(labels.Species))
	writeLabelBlock(bw, labels.Sites)

	return bw.Flush()
}

func writeLabelBlock(w io.Writer, labels []string) {
	for i, label := range labels {
		fmt.Fprintf(w, "%-*s", cepLabelWidth, prefix(label, cepLabelWidth))
		if (i+1)%cepLabelsPerLine == 0 {
			fmt.Fprint(w, "\n")
		}
	}
	if len(labels)%cepLabelsPerLine != 0 {
		fmt.Fprint(w, "\n")
	}
}

// DecodeCEP parses a condensed CEP stream back into values and labels.
// The matrix shape is inferred from the label blocks, so both blocks must
// be present.
func DecodeCEP(r io.Reader) ([][]float64, ordination.Labels, error) {
	scanner := bufio.NewScanner(r)

	// Title, format and couplets-per-line header lines.
	header := make([]string, 0, 3)
	for len(header) < 3 && scanner.Scan() {
		header = append(header, scanner.Text())
	}
	if len(header) < 3 {
		return nil, ordination.Labels{}, fmt.Errorf("truncated CEP header")
	}
	perLine, err := strconv.Atoi(strings.TrimSpace(header[2]))
	if err != nil || perLine <= 0 {
		return nil, ordination.Labels{}, fmt.Errorf("bad couplets-per-line field %q", header[2])
	}

	type couplet struct {
		site, species int
		value         float64
	}
	var (
		couplets   []couplet
		maxSite    int
		maxSpecies int
	)
	for scanner.Scan() {
		line := scanner.Text()
		site, err := cepField(line, 0)
		if err != nil {
			return nil, ordination.Labels{}, fmt.Errorf("bad sample number in %q: %w", line, err)
		}
		if site == 0 {
			break // terminator
		}
		for k := 0; k < perLine; k++ {
			off := 3 + k*6
			if off+3 > len(line) || strings.TrimSpace(line[off:]) == "" {
				break
			}
			species, err := cepField(line, off)
			if err != nil {
				return nil, ordination.Labels{}, fmt.Errorf("bad species number in %q: %w", line, err)
			}
			value, err := cepValue(line, off+3)
			if err != nil {
				return nil, ordination.Labels{}, fmt.Errorf("bad abundance in %q: %w", line, err)
			}
			couplets = append(couplets, couplet{site: site, species: species, value: value})
			if site > maxSite {
				maxSite = site
			}
			if species > maxSpecies {
				maxSpecies = species
			}
		}
	}
	if len(couplets) == 0 {
		return nil, ordination.Labels{}, fmt.Errorf("CEP stream has no data couplets")
	}

	labels := ordination.Labels{}
	labels.Species = readLabelBlock(scanner, maxSpecies)
	labels.Sites = readLabelBlock(scanner, maxSite)
	if len(labels.Species) != maxSpecies || len(labels.Sites) != maxSite {
		return nil, labels, fmt.Errorf("label blocks incomplete: %d/%d species, %d/%d sites",
			len(labels.Species), maxSpecies, len(labels.Sites), maxSite)
	}

	values := make([][]float64, maxSite)
	for i := range values {
		values[i] = make([]float64, maxSpecies)
	}
	for _, c := range couplets {
		values[c.site-1][c.species-1] = c.value
	}
	return values, labels, nil
}

func cepField(line string, off int) (int, error) {
	if off+3 > len(line) {
		return 0, fmt.Errorf("line too short at offset %d", off)
	}
	return strconv.Atoi(strings.TrimSpace(line[off : off+3]))
}

func cepValue(line string, off int) (float64, error) {
	if off+3 > len(line) {
		return 0, fmt.Errorf("line too short at offset %d", off)
	}
	return strconv.ParseFloat(strings.TrimSpace(line[off:off+3]), 64)
}

func readLabelBlock(scanner *bufio.Scanner, n int) []string {
	labels := make([]string, 0, n)
	for len(labels) < n && scanner.Scan() {
		line := scanner.Text()
		for off := 0; off < len(line) && len(labels) < n; off += cepLabelWidth {
			end := off + cepLabelWidth
			if end > len(line) {
				end = len(line)
			}
			labels = append(labels, strings.TrimSpace(line[off:end]))
		}
	}
	return labels
}
