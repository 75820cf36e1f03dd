// Package bigwig imports continuous-signal bigWig tracks (e.g. RRBS
// methylation fractions) into granges Sets.  All format decoding is
// delegated to gonetics' BigWigReader; this package only bins the signal
// and converts the bins to intervals.
package bigwig

import (
	"math"
	"os"

	"github.com/pbenner/gonetics"
	"github.com/pkg/errors"

	"github.com/grailbio/epi/granges"
)

// Opts configures a bigWig import.
type Opts struct {
	// Chrom restricts the import to one sequence.  Empty imports every
	// sequence in the file.
	Chrom string
	// BinSize is the bin width in bases.  Zero uses the file's native
	// resolution.
	BinSize int
	// Column names the metadata column holding the binned values.
	// Defaults to "meth".
	Column string
}

// Import reads a bigWig file from a local path and returns one interval per
// covered bin, with the bin mean attached under opts.Column.  Bins with no
// data in the file are omitted from the Set entirely: absence of coverage
// is represented by absence of an interval, never by a zero score.
func Import(path string, opts Opts) (granges.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return granges.Set{}, errors.Wrapf(err, "bigwig: open %s", path)
	}
	defer f.Close() // nolint: errcheck

	reader, err := gonetics.NewBigWigReader(f)
	if err != nil {
		return granges.Set{}, errors.Wrapf(err, "bigwig: %s", path)
	}
	column := opts.Column
	if column == "" {
		column = "meth"
	}
	chroms := reader.Genome.Seqnames
	if opts.Chrom != "" {
		chroms = []string{opts.Chrom}
	}
	var (
		seqnames []string
		start    []int
		end      []int
		values   []float64
	)
	for _, chrom := range chroms {
		length, err := reader.Genome.SeqLength(chrom)
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "bigwig: %s: no sequence %s", path, chrom)
		}
		// NaN init marks bins with no underlying records as missing so
		// they can be dropped below.
		data, binSize, err := reader.QuerySlice(
			chrom, 0, length, gonetics.BinMean, opts.BinSize, 0, math.NaN())
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "bigwig: %s: query %s", path, chrom)
		}
		for i, v := range data {
			if math.IsNaN(v) {
				continue
			}
			from := i * binSize
			to := from + binSize
			if to > length {
				to = length
			}
			seqnames = append(seqnames, chrom)
			start = append(start, from)
			end = append(end, to)
			values = append(values, v)
		}
	}
	out := granges.New(seqnames, start, end, nil)
	out.Meta[column] = values
	if out.Meta[column] == nil {
		out.Meta[column] = []float64{}
	}
	return out, nil
}
