package render

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HeatmapOpts configures Heatmap.
type HeatmapOpts struct {
	Title  string
	XLabel string
	YLabel string
	// Colors is the palette resolution.  Defaults to 64.
	Colors int
	// Width and Height of the figure.  Default 16cm x 12cm.
	Width  vg.Length
	Height vg.Length
}

// Heatmap renders a score matrix as a 2-D heat image, one pixel row per
// window.  Missing cells stay blank: NaN maps to a fully transparent color
// rather than the bottom of the palette, so a gap is visually distinct from
// a low score.
func Heatmap(grid plotter.GridXYZ, path string, opts HeatmapOpts) error {
	colors := opts.Colors
	if colors <= 0 {
		colors = 64
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 16 * vg.Centimeter
	}
	if height == 0 {
		height = 12 * vg.Centimeter
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	h := plotter.NewHeatMap(grid, palette.Heat(colors, 1))
	h.NaN = color.NRGBA{}
	p.Add(h)

	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "render: heatmap %s", path)
	}
	return nil
}
