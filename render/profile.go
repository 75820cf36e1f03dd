package render

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Curve is one line of a meta-profile figure: the per-position averages of
// one signal track across all windows.
type Curve struct {
	Name string
	// Offset is the relative position of Means[0] (e.g. -1000).
	Offset int
	// Means as produced by scoremat.Matrix.ColMeans; NaN positions break
	// the line rather than plotting as zero.
	Means []float64
	// Color overrides the default palette when non-nil.
	Color color.Color
}

// ProfileOpts configures Profile.
type ProfileOpts struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// Profile renders averaged-profile curves, one line per input track.
func Profile(curves []Curve, path string, opts ProfileOpts) error {
	if len(curves) == 0 {
		return errors.New("render: no profile curves")
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 16 * vg.Centimeter
	}
	if height == 0 {
		height = 10 * vg.Centimeter
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = true

	for i, curve := range curves {
		clr := curve.Color
		if clr == nil {
			clr = plotutil.Color(i)
		}
		first := true
		for _, seg := range splitFinite(curve.Offset, curve.Means) {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return errors.Wrapf(err, "render: profile %s", curve.Name)
			}
			line.Color = clr
			p.Add(line)
			if first {
				p.Legend.Add(curve.Name, line)
				first = false
			}
		}
	}

	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "render: profile %s", path)
	}
	return nil
}

// splitFinite slices a mean vector into maximal NaN-free segments so gaps
// render as gaps.
func splitFinite(offset int, means []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i, v := range means {
		if math.IsNaN(v) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(offset + i), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
