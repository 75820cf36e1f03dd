// Package scoremat computes window-aligned score matrices: one row per
// genomic window, one column per base position within the window, with the
// harmonized score of the underlying data at each position.  Positions not
// covered by any data interval are NaN, never zero; the distinction matters
// when averaging across windows.
package scoremat

import (
	"math"

	"github.com/biogo/store/interval"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"

	"github.com/grailbio/epi/granges"
)

// Opts configures Score.
type Opts struct {
	// Width is the expected window width.  Zero takes the width of the
	// first window; a window with any other width is an error either way.
	Width int
	// Offset is the relative position of column zero (e.g. -1000 for a
	// window reaching 1000 bases upstream of the TSS).  Display only.
	Offset int
	// Parallelism fans the per-window scoring out over this many
	// goroutines.  Values below two keep it serial.  Output is identical
	// either way; this is a speed hint, not a semantic knob.
	Parallelism int
}

// Matrix is a rows-by-cols score grid.  Data is row-major; missing cells
// are NaN.
type Matrix struct {
	Rows   int
	Cols   int
	Offset int
	Data   []float64
}

// Row returns the r-th row as a slice aliasing the matrix.
func (m *Matrix) Row(r int) []float64 { return m.Data[r*m.Cols : (r+1)*m.Cols] }

// ColMeans returns the per-column mean across windows, excluding missing
// cells from both numerator and denominator.  A column with no finite cell
// is NaN.
func (m *Matrix) ColMeans() []float64 {
	sums := make([]float64, m.Cols)
	counts := make([]int, m.Cols)
	for r := 0; r < m.Rows; r++ {
		row := m.Row(r)
		for c, v := range row {
			if !math.IsNaN(v) {
				sums[c] += v
				counts[c]++
			}
		}
	}
	out := make([]float64, m.Cols)
	for c := range out {
		if counts[c] == 0 {
			out[c] = math.NaN()
		} else {
			out[c] = sums[c] / float64(counts[c])
		}
	}
	return out
}

// Dims, Z, X and Y implement gonum/plot's plotter.GridXYZ so a Matrix can
// be handed straight to a heat map.
func (m *Matrix) Dims() (c, r int) { return m.Cols, m.Rows }
func (m *Matrix) Z(c, r int) float64 {
	return m.Data[r*m.Cols+c]
}
func (m *Matrix) X(c int) float64 { return float64(m.Offset + c) }
func (m *Matrix) Y(r int) float64 { return float64(r) }

// entry indexes one data interval in a per-chromosome tree.
type entry struct {
	start, end int
	id         uintptr
	row        int
}

func (e entry) Overlap(b interval.IntRange) bool { return e.end > b.Start && e.start < b.End }
func (e entry) ID() uintptr                      { return e.id }
func (e entry) Range() interval.IntRange         { return interval.IntRange{Start: e.start, End: e.end} }

// Score computes the matrix for one harmonized data Set against a window
// Set.  Every window must have the same width; minus-strand windows have
// their position axis mirrored so that column zero is always the
// transcriptionally-upstream edge.  Windows on chromosomes absent from the
// data, or reaching past the data's extent, keep their row with the
// uncovered positions NaN.
func Score(data, windows granges.Set, opts Opts) (*Matrix, error) {
	scores, err := data.Score()
	if err != nil {
		return nil, errors.Wrap(err, "scoremat")
	}
	width := opts.Width
	if width == 0 && windows.Len() > 0 {
		width = windows.Width(0)
	}
	if width <= 0 {
		return nil, errors.Errorf("scoremat: invalid window width %d", width)
	}
	for i := 0; i < windows.Len(); i++ {
		if windows.Width(i) != width {
			return nil, errors.Errorf("scoremat: window %d has width %d, want %d",
				i, windows.Width(i), width)
		}
	}

	trees := map[string]*interval.IntTree{}
	var id uintptr
	for chrom, indices := range data.IndexByChrom() {
		tree := &interval.IntTree{}
		for _, i := range indices {
			if err := tree.Insert(entry{
				start: data.Start[i],
				end:   data.End[i],
				id:    id,
				row:   i,
			}, false); err != nil {
				return nil, errors.Wrapf(err, "scoremat: index %s", chrom)
			}
			id++
		}
		trees[chrom] = tree
	}

	m := &Matrix{
		Rows:   windows.Len(),
		Cols:   width,
		Offset: opts.Offset,
		Data:   make([]float64, windows.Len()*width),
	}
	scoreWindow := func(w int) {
		row := m.Row(w)
		for c := range row {
			row[c] = math.NaN()
		}
		tree := trees[windows.Seqnames[w]]
		if tree == nil {
			return
		}
		wStart, wEnd := windows.Start[w], windows.End[w]
		for _, hit := range tree.Get(entry{start: wStart, end: wEnd}) {
			e := hit.(entry)
			lo, hi := e.start, e.end
			if lo < wStart {
				lo = wStart
			}
			if hi > wEnd {
				hi = wEnd
			}
			for p := lo; p < hi; p++ {
				row[p-wStart] = scores[e.row]
			}
		}
		if windows.Strand[w] == granges.Minus {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
	}

	if opts.Parallelism > 1 {
		nJobs := opts.Parallelism
		err := traverse.Each(nJobs, func(job int) error {
			for w := job; w < windows.Len(); w += nJobs {
				scoreWindow(w)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		for w := 0; w < windows.Len(); w++ {
			scoreWindow(w)
		}
	}
	return m, nil
}
