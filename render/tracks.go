package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/grailbio/epi/annotation"
	"github.com/grailbio/epi/granges"
)

// rect is an axis-space rectangle drawn by rectsPlotter.
type rect struct {
	x0, x1, y0, y1 float64
	fill           color.Color
	stroke         bool
}

type rectsPlotter struct {
	rects []rect
	line  draw.LineStyle
}

func (r *rectsPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, rc := range r.rects {
		pts := []vg.Point{
			{X: trX(rc.x0), Y: trY(rc.y0)},
			{X: trX(rc.x1), Y: trY(rc.y0)},
			{X: trX(rc.x1), Y: trY(rc.y1)},
			{X: trX(rc.x0), Y: trY(rc.y1)},
		}
		if rc.fill != nil {
			c.FillPolygon(rc.fill, pts)
		}
		if rc.stroke {
			c.StrokeLines(r.line, append(pts, pts[0]))
		}
	}
}

func newRectsPlotter(rects []rect) *rectsPlotter {
	return &rectsPlotter{rects: rects, line: plotter.DefaultLineStyle}
}

// segment is an axis-space line segment.
type segment struct {
	x0, y0, x1, y1 float64
}

type segmentsPlotter struct {
	segs []segment
	line draw.LineStyle
}

func (s *segmentsPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, sg := range s.segs {
		c.StrokeLines(s.line, []vg.Point{
			{X: trX(sg.x0), Y: trY(sg.y0)},
			{X: trX(sg.x1), Y: trY(sg.y1)},
		})
	}
}

// newPanel returns a plot spanning the region with both axes hidden.
func newPanel(r Region) *plot.Plot {
	p := plot.New()
	p.X.Min = float64(r.From)
	p.X.Max = float64(r.To)
	p.Y.Min = 0
	p.Y.Max = 1
	p.HideAxes()
	return p
}

// clampedOverlap intersects [start, end) with the region, reporting whether
// anything is left.
func clampedOverlap(r Region, start, end int) (float64, float64, bool) {
	if end <= r.From || start >= r.To {
		return 0, 0, false
	}
	if start < r.From {
		start = r.From
	}
	if end > r.To {
		end = r.To
	}
	return float64(start), float64(end), true
}

// AxisTrack renders the shared genome coordinate ruler.
type AxisTrack struct{}

// Plot implements Track.
func (AxisTrack) Plot(r Region) (*plot.Plot, error) {
	p := plot.New()
	p.X.Min = float64(r.From)
	p.X.Max = float64(r.To)
	p.Y.Min = 0
	p.Y.Max = 1
	p.HideY()
	p.X.Label.Text = fmt.Sprintf("%s position (%s)", r.Chrom, r.Build)
	return p, nil
}

// IdeogramTrack renders the chromosome's banding pattern with the current
// region marked.  Unlike every other track it spans the whole chromosome:
// a region-sized slice of an ideogram carries no information.
type IdeogramTrack struct {
	Bands []annotation.Cytoband
}

// Plot implements Track.
func (t IdeogramTrack) Plot(r Region) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.Chrom
	chromEnd := 1
	for _, b := range t.Bands {
		if b.End > chromEnd {
			chromEnd = b.End
		}
	}
	p.X.Min = 0
	p.X.Max = float64(chromEnd)
	p.Y.Min = -0.4
	p.Y.Max = 1.4
	p.HideAxes()

	rects := make([]rect, 0, len(t.Bands)+1)
	for _, b := range t.Bands {
		rects = append(rects, rect{
			x0: float64(b.Start), x1: float64(b.End),
			y0: 0, y1: 1,
			fill:   stainColor(b.Stain),
			stroke: true,
		})
	}
	p.Add(newRectsPlotter(rects))

	// Region marker on top of the bands.
	marker := newRectsPlotter([]rect{{
		x0: float64(r.From), x1: float64(r.To),
		y0: -0.3, y1: 1.3,
		stroke: true,
	}})
	marker.line.Color = color.NRGBA{R: 0xcc, A: 0xff}
	marker.line.Width = vg.Points(1.5)
	p.Add(marker)
	return p, nil
}

func stainColor(stain string) color.Color {
	switch stain {
	case "gneg":
		return color.White
	case "gpos25":
		return color.Gray{Y: 0xc0}
	case "gpos50":
		return color.Gray{Y: 0x80}
	case "gpos75":
		return color.Gray{Y: 0x40}
	case "gpos100":
		return color.Black
	case "acen":
		return color.NRGBA{R: 0xb2, G: 0x22, B: 0x22, A: 0xff}
	case "gvar":
		return color.Gray{Y: 0xd8}
	case "stalk":
		return color.Gray{Y: 0x90}
	default:
		return color.Gray{Y: 0xe8}
	}
}

// GeneModelTrack renders one gene model: exon boxes joined by an intron
// line.
type GeneModelTrack struct {
	Locus annotation.Locus
	Color color.Color
}

// Plot implements Track.
func (t GeneModelTrack) Plot(r Region) (*plot.Plot, error) {
	p := newPanel(r)
	strand := "."
	if t.Locus.Strand == granges.Plus {
		strand = "+"
	} else if t.Locus.Strand == granges.Minus {
		strand = "-"
	}
	p.Title.Text = fmt.Sprintf("%s (%s)", t.Locus.Symbol, strand)

	if t.Locus.Chrom != r.Chrom {
		return p, nil
	}
	fill := t.Color
	if fill == nil {
		fill = color.NRGBA{R: 0x1f, G: 0x4e, B: 0x8c, A: 0xff}
	}
	if x0, x1, ok := clampedOverlap(r, t.Locus.Start, t.Locus.End); ok {
		p.Add(&segmentsPlotter{
			segs: []segment{{x0: x0, y0: 0.5, x1: x1, y1: 0.5}},
			line: plotter.DefaultLineStyle,
		})
	}
	var rects []rect
	for i := range t.Locus.ExonStarts {
		x0, x1, ok := clampedOverlap(r, t.Locus.ExonStarts[i], t.Locus.ExonEnds[i])
		if !ok {
			continue
		}
		rects = append(rects, rect{x0: x0, x1: x1, y0: 0.3, y1: 0.7, fill: fill})
	}
	if len(rects) > 0 {
		p.Add(newRectsPlotter(rects))
	}
	return p, nil
}

// AnnotationTrack renders an interval Set as plain boxes (e.g. CpG
// islands).
type AnnotationTrack struct {
	Name  string
	Set   granges.Set
	Color color.Color
}

// Plot implements Track.
func (t AnnotationTrack) Plot(r Region) (*plot.Plot, error) {
	p := newPanel(r)
	p.Title.Text = t.Name
	fill := t.Color
	if fill == nil {
		fill = color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	}
	var rects []rect
	for i := 0; i < t.Set.Len(); i++ {
		if t.Set.Seqnames[i] != r.Chrom {
			continue
		}
		x0, x1, ok := clampedOverlap(r, t.Set.Start[i], t.Set.End[i])
		if !ok {
			continue
		}
		rects = append(rects, rect{x0: x0, x1: x1, y0: 0.25, y1: 0.75, fill: fill})
	}
	if len(rects) > 0 {
		p.Add(newRectsPlotter(rects))
	}
	return p, nil
}

// DataTrack renders a harmonized signal or peak Set as a histogram over the
// region: one bar per interval, bar height = score.
type DataTrack struct {
	Name  string
	Set   granges.Set
	Color color.Color
	// MaxY fixes the vertical scale; zero autoscales to the data in the
	// region.
	MaxY float64
}

// Plot implements Track.
func (t DataTrack) Plot(r Region) (*plot.Plot, error) {
	scores, err := t.Set.Score()
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = t.Name
	p.X.Min = float64(r.From)
	p.X.Max = float64(r.To)
	p.HideX()

	fill := t.Color
	if fill == nil {
		fill = color.NRGBA{R: 0x8c, G: 0x1f, B: 0x3a, A: 0xff}
	}
	var (
		rects []rect
		maxY  float64
	)
	for i := 0; i < t.Set.Len(); i++ {
		if t.Set.Seqnames[i] != r.Chrom {
			continue
		}
		x0, x1, ok := clampedOverlap(r, t.Set.Start[i], t.Set.End[i])
		if !ok {
			continue
		}
		rects = append(rects, rect{x0: x0, x1: x1, y0: 0, y1: scores[i], fill: fill})
		if scores[i] > maxY {
			maxY = scores[i]
		}
	}
	if t.MaxY > 0 {
		maxY = t.MaxY
	} else if maxY == 0 {
		maxY = 1
	}
	p.Y.Min = 0
	p.Y.Max = maxY * 1.05
	if len(rects) > 0 {
		p.Add(newRectsPlotter(rects))
	}
	return p, nil
}
