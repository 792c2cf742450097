package report

import (
	"fmt"
	"strings"

	"decorana/domain/core"
	"decorana/domain/ordination"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
)

// Markdown builds a human-readable summary of one ordination run:
// configuration, per-axis eigenvalues and gradient lengths, and score
// distributions for sites and species.
func Markdown(runID core.RunID, cfg ordination.Config, res *ordination.Result) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ordination run %s\n\n", runID)
	fmt.Fprintf(&b, "Analysis: %s | downweight rare: %v | rescaling cycles: %d | segments: %d\n\n",
		cfg.Analysis, cfg.DownweightRare, cfg.RescalingCycles, cfg.Segments)
	fmt.Fprintf(&b, "%d sites, %d species, %d axes extracted.\n\n",
		len(res.SiteScores), len(res.SpeciesScores), res.Axes())

	b.WriteString("## Axes\n\n")
	b.WriteString("| Axis | Eigenvalue | Gradient length (sd) | Iterations |\n")
	b.WriteString("|------|------------|----------------------|------------|\n")
	for k := 0; k < res.Axes(); k++ {
		fmt.Fprintf(&b, "| %d | %.4f | %.2f | %d |\n",
			k+1, res.Eigenvalues[k], res.AxisLengths[k], res.Iterations[k])
	}
	b.WriteString("\n")

	if err := scoreSection(&b, "Site scores", res, (*ordination.Result).SiteAxis); err != nil {
		return "", err
	}
	if err := scoreSection(&b, "Species scores", res, (*ordination.Result).SpeciesAxis); err != nil {
		return "", err
	}

	return b.String(), nil
}

func scoreSection(b *strings.Builder, title string, res *ordination.Result, axisOf func(*ordination.Result, int) []float64) error {
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Axis | Min | Median | Mean | Max |\n")
	b.WriteString("|------|-----|--------|------|-----|\n")
	for k := 0; k < res.Axes(); k++ {
		scores := axisOf(res, k)
		min, err := stats.Min(scores)
		if err != nil {
			return fmt.Errorf("%s axis %d: %w", title, k+1, err)
		}
		max, _ := stats.Max(scores)
		median, _ := stats.Median(scores)
		mean, _ := stats.Mean(scores)
		fmt.Fprintf(b, "| %d | %.3f | %.3f | %.3f | %.3f |\n", k+1, min, median, mean, max)
	}
	b.WriteString("\n")
	return nil
}

// HTML renders a markdown report as a standalone HTML fragment.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
