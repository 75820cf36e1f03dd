package workspace

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/epi/annotation"
	"github.com/grailbio/epi/granges"
	"github.com/grailbio/epi/scoremat"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	meth := granges.New([]string{"chr21"}, []int{10}, []int{20}, nil)
	meth, err := meth.AddMeta("score", []float64{0.8})
	expect.NoError(t, err)

	w := &Workspace{
		CellType: "H1",
		Build:    "hg18",
		Chrom:    "chr21",
		Meth:     meth,
		Windows:  granges.New([]string{"chr21"}, []int{0}, []int{100}, []byte{'-'}),
		MethMatrix: &scoremat.Matrix{
			Rows: 1, Cols: 4, Offset: -2,
			Data: []float64{1, math.NaN(), 3, 4},
		},
		Loci: []annotation.Locus{{Symbol: "SOD1", Chrom: "chr21", Start: 100, End: 600}},
		Cytobands: []annotation.Cytoband{
			{Chrom: "chr21", Start: 0, End: 100, Name: "p1", Stain: "gneg"},
		},
	}

	path := filepath.Join(t.TempDir(), "workspace.gob")
	expect.NoError(t, w.Save(ctx, path))

	got, err := Load(ctx, path)
	expect.NoError(t, err)
	expect.EQ(t, got.CellType, "H1")
	expect.EQ(t, got.Chrom, "chr21")
	expect.EQ(t, got.Meth.Len(), 1)
	score, err := got.Meth.Score()
	expect.NoError(t, err)
	expect.EQ(t, score, []float64{0.8})
	expect.EQ(t, got.Windows.Strand[0], byte('-'))
	expect.EQ(t, got.MethMatrix.Cols, 4)
	expect.EQ(t, got.MethMatrix.Data[0], 1.0)
	expect.True(t, math.IsNaN(got.MethMatrix.Data[1]))
	expect.EQ(t, got.Loci[0].Symbol, "SOD1")
	expect.EQ(t, got.Cytobands[0].Stain, "gneg")
	// Stages that never ran stay zero-valued.
	expect.EQ(t, got.PeakMatrix, (*scoremat.Matrix)(nil))
	expect.EQ(t, got.Peaks.Len(), 0)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.gob"))
	expect.NotNil(t, err)
}
