package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/epi/annotation"
	"github.com/grailbio/epi/granges"
	"github.com/grailbio/epi/scoremat"
)

func testMatrix(t *testing.T) *scoremat.Matrix {
	s := granges.New([]string{"chr1", "chr1"}, []int{100, 400}, []int{300, 450}, nil)
	s, err := s.AddMeta("v", []float64{0.5, 0.9})
	expect.NoError(t, err)
	h, err := s.Harmonize("v")
	expect.NoError(t, err)
	windows := granges.New(
		[]string{"chr1", "chr1", "chr1"},
		[]int{0, 200, 1000},
		[]int{500, 700, 1500},
		[]byte{'+', '-', '+'})
	m, err := scoremat.Score(h, windows, scoremat.Opts{Offset: -250})
	expect.NoError(t, err)
	return m
}

func checkPNG(t *testing.T, path string) {
	info, err := os.Stat(path)
	expect.NoError(t, err)
	expect.True(t, info.Size() > 0)
}

func TestHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heat.png")
	err := Heatmap(testMatrix(t), path, HeatmapOpts{
		Title:  "methylation",
		XLabel: "position relative to TSS",
		YLabel: "promoter",
	})
	expect.NoError(t, err)
	checkPNG(t, path)
}

func TestProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.png")
	m := testMatrix(t)
	err := Profile([]Curve{
		{Name: "H3K4me3", Offset: m.Offset, Means: m.ColMeans()},
		{Name: "flat", Offset: m.Offset, Means: []float64{1, 1, math.NaN(), 1}},
	}, path, ProfileOpts{Title: "meta-profile", XLabel: "bp", YLabel: "mean score"})
	expect.NoError(t, err)
	checkPNG(t, path)
}

func TestProfileEmpty(t *testing.T) {
	err := Profile(nil, filepath.Join(t.TempDir(), "p.png"), ProfileOpts{})
	expect.NotNil(t, err)
}

func TestSplitFinite(t *testing.T) {
	segs := splitFinite(-2, []float64{1, 2, math.NaN(), math.NaN(), 5, 6})
	expect.EQ(t, len(segs), 2)
	expect.EQ(t, segs[0][0].X, -2.0)
	expect.EQ(t, segs[0][1].Y, 2.0)
	expect.EQ(t, segs[1][0].X, 2.0)
	expect.EQ(t, segs[1][0].Y, 5.0)

	expect.EQ(t, len(splitFinite(0, []float64{math.NaN()})), 0)
}

func TestCompose(t *testing.T) {
	region := Region{Build: "hg18", Chrom: "chr21", From: 33025000, To: 33100000}

	peaks := granges.New([]string{"chr21", "chr21", "chr1"},
		[]int{33030000, 33090000, 5},
		[]int{33032000, 33091000, 10},
		nil)
	peaks, err := peaks.AddMeta("signalValue", []float64{3.5, 8.0, 1.0})
	expect.NoError(t, err)
	hpeaks, err := peaks.Harmonize("signalValue")
	expect.NoError(t, err)

	cpg := granges.New([]string{"chr21"}, []int{33037000}, []int{33038500}, nil)

	locus := annotation.Locus{
		Symbol: "SOD1", Chrom: "chr21", Strand: '+',
		Start: 33031935, End: 33041244,
		ExonStarts: []int{33031935, 33036102, 33040784},
		ExonEnds:   []int{33032154, 33036202, 33041244},
	}
	bands := []annotation.Cytoband{
		{Chrom: "chr21", Start: 0, End: 12300000, Name: "p12", Stain: "gpos50"},
		{Chrom: "chr21", Start: 12300000, End: 13200000, Name: "cen", Stain: "acen"},
		{Chrom: "chr21", Start: 13200000, End: 46944323, Name: "q21", Stain: "gneg"},
	}

	path := filepath.Join(t.TempDir(), "locus.png")
	err = Compose(region, []Track{
		IdeogramTrack{Bands: bands},
		AxisTrack{},
		GeneModelTrack{Locus: locus},
		AnnotationTrack{Name: "CpG islands", Set: cpg},
		DataTrack{Name: "H3K4me3", Set: hpeaks},
	}, path, ComposeOpts{})
	expect.NoError(t, err)
	checkPNG(t, path)
}

func TestComposeEmptyTrackOK(t *testing.T) {
	// A track with no data in the window renders empty, not an error.
	region := Region{Build: "hg18", Chrom: "chr21", From: 100, To: 200}
	empty := granges.New(nil, nil, nil, nil)
	hempty, err := empty.AddMeta("score", []float64{})
	expect.NoError(t, err)
	path := filepath.Join(t.TempDir(), "empty.png")
	err = Compose(region, []Track{
		AxisTrack{},
		AnnotationTrack{Name: "none", Set: empty},
		DataTrack{Name: "none", Set: hempty},
	}, path, ComposeOpts{})
	expect.NoError(t, err)
	checkPNG(t, path)
}

func TestComposeBadRegion(t *testing.T) {
	err := Compose(Region{Chrom: "chr1", From: 10, To: 10}, []Track{AxisTrack{}},
		filepath.Join(t.TempDir(), "x.png"), ComposeOpts{})
	expect.NotNil(t, err)
}

func TestRegionPad(t *testing.T) {
	r := Region{Chrom: "chr1", From: 500, To: 1000}.Pad(700)
	expect.EQ(t, r.From, 0)
	expect.EQ(t, r.To, 1700)
}
