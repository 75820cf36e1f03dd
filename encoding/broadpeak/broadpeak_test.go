package broadpeak

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

const sample = `track type=broadPeak name="H3K4me3"
chr21	9825442	9826296	peak_1	158	.	4.5	15.8	12.6
chr21	9944133	9944704	peak_2	62	+	2.1	6.2	4.0
chr22	16050500	16051000	peak_3	900	-	9.9	90.0	85.5
`

func TestRead(t *testing.T) {
	set, err := Read(strings.NewReader(sample), DefaultSchema)
	expect.NoError(t, err)
	expect.EQ(t, set.Len(), 3)
	expect.EQ(t, set.Seqnames, []string{"chr21", "chr21", "chr22"})
	expect.EQ(t, set.Start[0], 9825442)
	expect.EQ(t, set.End[0], 9826296)
	expect.EQ(t, set.Names, []string{"peak_1", "peak_2", "peak_3"})
	expect.EQ(t, set.Strand, []byte{'.', '+', '-'})
	expect.EQ(t, set.Meta["score"], []float64{158, 62, 900})
	expect.EQ(t, set.Meta["signalValue"], []float64{4.5, 2.1, 9.9})
	expect.EQ(t, set.Meta["pValue"], []float64{15.8, 6.2, 90.0})
	expect.EQ(t, set.Meta["qValue"], []float64{12.6, 4.0, 85.5})
}

func TestReadHarmonizes(t *testing.T) {
	set, err := Read(strings.NewReader(sample), DefaultSchema)
	expect.NoError(t, err)
	h, err := set.Harmonize("signalValue")
	expect.NoError(t, err)
	expect.EQ(t, h.MetaNames(), []string{"score"})
	score, err := h.Score()
	expect.NoError(t, err)
	expect.EQ(t, score, []float64{4.5, 2.1, 9.9})
}

func TestReadSchemaMismatch(t *testing.T) {
	// A narrowPeak line (one extra column, pointSource) against the
	// broadPeak schema must fail loudly, not misalign.
	narrow := "chr1\t10\t20\tp\t5\t+\t1.0\t2.0\t3.0\t15\n"
	_, err := Read(strings.NewReader(narrow), DefaultSchema)
	expect.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "10 columns")

	short := "chr1\t10\t20\tp\t5\t+\t1.0\n"
	_, err = Read(strings.NewReader(short), Schema{Extra: []string{"signalValue", "pValue"}})
	expect.NotNil(t, err)
}

func TestReadBadNumber(t *testing.T) {
	bad := "chr1\t10\ttwenty\tp\t5\t+\t1.0\t2.0\t3.0\n"
	_, err := Read(strings.NewReader(bad), DefaultSchema)
	expect.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "bad end")
}

func TestReadEmpty(t *testing.T) {
	set, err := Read(strings.NewReader("track type=broadPeak\n"), DefaultSchema)
	expect.NoError(t, err)
	expect.EQ(t, set.Len(), 0)
}
