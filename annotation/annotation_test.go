package annotation

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestResolveLocusMinMax(t *testing.T) {
	trs := []Transcript{
		{Name: "NM_1", Symbol: "G1", Chrom: "chr21", Strand: '+',
			TxStart: 200, TxEnd: 500,
			ExonStarts: []int{200, 400}, ExonEnds: []int{250, 500}},
		{Name: "NM_2", Symbol: "G1", Chrom: "chr21", Strand: '+',
			TxStart: 100, TxEnd: 600,
			ExonStarts: []int{100, 450}, ExonEnds: []int{150, 600}},
	}
	loc, err := ResolveLocus("G1", trs)
	expect.NoError(t, err)
	// Two transcripts with starts {100, 200} and ends {500, 600} resolve
	// to the min/max envelope.
	expect.EQ(t, loc.Start, 100)
	expect.EQ(t, loc.End, 600)
	expect.EQ(t, loc.Chrom, "chr21")
	// Exons merged across transcripts: [400,500) and [450,600) coalesce.
	expect.EQ(t, loc.ExonStarts, []int{100, 200, 400})
	expect.EQ(t, loc.ExonEnds, []int{150, 250, 600})
}

func TestResolveLocusSingle(t *testing.T) {
	trs := []Transcript{
		{Name: "NM_9", Symbol: "G2", Chrom: "chrX", Strand: '-',
			TxStart: 1000, TxEnd: 2000,
			ExonStarts: []int{1000}, ExonEnds: []int{2000}},
	}
	loc, err := ResolveLocus("G2", trs)
	expect.NoError(t, err)
	expect.EQ(t, loc.Start, 1000)
	expect.EQ(t, loc.End, 2000)
	expect.EQ(t, loc.Strand, byte('-'))
}

func TestResolveLocusNoMatch(t *testing.T) {
	_, err := ResolveLocus("NOPE", nil)
	expect.NotNil(t, err)
	expect.HasSubstr(t, err.Error(), "NOPE")
}

func TestResolveLocusIgnoresOtherChrom(t *testing.T) {
	trs := []Transcript{
		{Name: "NM_1", Symbol: "G3", Chrom: "chr1", TxStart: 100, TxEnd: 200},
		{Name: "NM_2", Symbol: "G3", Chrom: "chr7", TxStart: 5, TxEnd: 9999},
	}
	loc, err := ResolveLocus("G3", trs)
	expect.NoError(t, err)
	expect.EQ(t, loc.Chrom, "chr1")
	expect.EQ(t, loc.Start, 100)
	expect.EQ(t, loc.End, 200)
}

func TestParseCommaInts(t *testing.T) {
	v, err := parseCommaInts("100,200,300,")
	expect.NoError(t, err)
	expect.EQ(t, v, []int{100, 200, 300})

	v, err = parseCommaInts("")
	expect.NoError(t, err)
	expect.EQ(t, len(v), 0)

	_, err = parseCommaInts("1,x,")
	expect.NotNil(t, err)
}

func TestStrandByte(t *testing.T) {
	expect.EQ(t, strandByte("+"), byte('+'))
	expect.EQ(t, strandByte("-"), byte('-'))
	expect.EQ(t, strandByte(""), byte('.'))
	expect.EQ(t, strandByte("?"), byte('.'))
}
