package plot

import (
	"fmt"
	"image/color"

	"decorana/domain/ordination"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Options controls the biplot rendering. The zero value shows sites and
// species on axes 1 and 2 without point labels.
type Options struct {
	// XAxis and YAxis are 1-based ordination axis numbers. Zero means
	// axes 1 and 2.
	XAxis int
	YAxis int

	ShowSites     bool
	ShowSpecies   bool
	SiteLabels    bool
	SpeciesLabels bool

	// SiteColor and SpeciesColor override the black/red defaults.
	SiteColor    color.Color
	SpeciesColor color.Color

	// XLim and YLim override the automatic limits; nil keeps the
	// auto-computed range with a 15% margin.
	XLim *[2]float64
	YLim *[2]float64

	Title string
}

// DefaultOptions mirrors the conventional DCA biplot: black site circles,
// red species triangles, axes 1 against 2.
func DefaultOptions() Options {
	return Options{
		XAxis:       1,
		YAxis:       2,
		ShowSites:   true,
		ShowSpecies: true,
	}
}

// margin widens auto-computed limits so edge points are not clipped.
const margin = 1.15

// Biplot renders site and species scores on a chosen pair of axes and
// saves the drawing to path; the format follows the file extension
// (png, svg, pdf).
func Biplot(res *ordination.Result, opts Options, path string) error {
	if opts.XAxis == 0 {
		opts.XAxis = 1
	}
	if opts.YAxis == 0 {
		opts.YAxis = 2
	}
	if err := checkAxis(res, opts.XAxis); err != nil {
		return err
	}
	if err := checkAxis(res, opts.YAxis); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = fmt.Sprintf("CA Axis %d", opts.XAxis)
	p.Y.Label.Text = fmt.Sprintf("CA Axis %d", opts.YAxis)

	if opts.ShowSites {
		siteColor := opts.SiteColor
		if siteColor == nil {
			siteColor = color.Black
		}
		pts := axisPoints(res.SiteAxis(opts.XAxis-1), res.SiteAxis(opts.YAxis-1))
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("site scatter: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = siteColor
		p.Add(sc)
		p.Legend.Add("Site Scores", sc)

		if opts.SiteLabels {
			if err := addLabels(p, pts, res.Labels.Sites, siteColor); err != nil {
				return err
			}
		}
	}

	if opts.ShowSpecies {
		speciesColor := opts.SpeciesColor
		if speciesColor == nil {
			speciesColor = color.RGBA{R: 0xcc, A: 0xff}
		}
		pts := axisPoints(res.SpeciesAxis(opts.XAxis-1), res.SpeciesAxis(opts.YAxis-1))
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("species scatter: %w", err)
		}
		sc.GlyphStyle.Shape = draw.TriangleGlyph{}
		sc.GlyphStyle.Color = speciesColor
		p.Add(sc)
		p.Legend.Add("Species Scores", sc)

		if opts.SpeciesLabels {
			if err := addLabels(p, pts, res.Labels.Species, speciesColor); err != nil {
				return err
			}
		}
	}

	p.X.Min, p.X.Max = padRange(p.X.Min, p.X.Max)
	p.Y.Min, p.Y.Max = padRange(p.Y.Min, p.Y.Max)
	if opts.XLim != nil {
		p.X.Min, p.X.Max = opts.XLim[0], opts.XLim[1]
	}
	if opts.YLim != nil {
		p.Y.Min, p.Y.Max = opts.YLim[0], opts.YLim[1]
	}

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// padRange widens [lo, hi] symmetrically to margin times its span.
func padRange(lo, hi float64) (float64, float64) {
	pad := (hi - lo) * (margin - 1) / 2
	return lo - pad, hi + pad
}

func checkAxis(res *ordination.Result, axis int) error {
	if axis < 1 || axis > res.Axes() {
		return fmt.Errorf("axis %d out of range: result has %d axes", axis, res.Axes())
	}
	return nil
}

func axisPoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func addLabels(p *plot.Plot, pts plotter.XYs, names []string, c color.Color) error {
	if len(names) != len(pts) {
		return fmt.Errorf("have %d labels for %d points", len(names), len(pts))
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: names})
	if err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Color = c
	}
	p.Add(lbl)
	return nil
}
