// Package render draws the pipeline's figures: aggregate views of a score
// matrix (heat image, averaged meta-profile) and composite locus views
// built from stacked tracks (ideogram, coordinate axis, gene model,
// annotation boxes, signal histograms).  All drawing is done with
// gonum/plot; this package only arranges data into plots.
package render

import (
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Region is the shared coordinate window of a composite figure.
type Region struct {
	Build string
	Chrom string
	From  int
	To    int
}

// Pad returns the region widened by n bases on both sides (clamped at 0).
func (r Region) Pad(n int) Region {
	out := r
	out.From -= n
	if out.From < 0 {
		out.From = 0
	}
	out.To += n
	return out
}

// Track is one horizontal panel of a composite figure.  Tracks render
// themselves into a gonum plot for a given region; a track with nothing in
// the region produces an empty panel, not an error.
type Track interface {
	// Plot builds the track's panel for the region.
	Plot(r Region) (*plot.Plot, error)
}

// ComposeOpts configures Compose.
type ComposeOpts struct {
	// Width of the figure.  Defaults to 18cm.
	Width vg.Length
	// TrackHeight is the height of each panel.  Defaults to 3cm.
	TrackHeight vg.Length
}

// Compose renders the tracks stacked top to bottom, in order, into one PNG.
// Track order in the slice is vertical order in the figure.
func Compose(r Region, tracks []Track, path string, opts ComposeOpts) error {
	if len(tracks) == 0 {
		return errors.New("render: no tracks to compose")
	}
	if r.To <= r.From {
		return errors.Errorf("render: empty region %s:%d-%d", r.Chrom, r.From, r.To)
	}
	width := opts.Width
	if width == 0 {
		width = 18 * vg.Centimeter
	}
	trackHeight := opts.TrackHeight
	if trackHeight == 0 {
		trackHeight = 3 * vg.Centimeter
	}

	plots := make([][]*plot.Plot, len(tracks))
	for i, trk := range tracks {
		p, err := trk.Plot(r)
		if err != nil {
			return errors.Wrapf(err, "render: track %d", i)
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(width, trackHeight*vg.Length(len(tracks)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(tracks),
		Cols: 1,
		PadY: 2 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "render: create %s", path)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close() // nolint: errcheck
		return errors.Wrapf(err, "render: write %s", path)
	}
	return f.Close()
}
