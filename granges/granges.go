// Package granges provides ordered collections of genomic intervals with
// named numeric metadata columns, modeled after the GRanges containers used
// throughout the epigenomics toolchain.  Coordinates are 0-based half-open
// [start, end).  A Set is a struct-of-slices: the i-th entry of every column
// describes the i-th interval.
//
// Sets are treated as immutable by the operations in this package: filters
// and transforms return new Sets and never modify their receiver.  This
// keeps every pipeline stage a pure function of the previous stage's output.
package granges

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Strand constants.  Anything other than '+' and '-' is treated as
// unstranded.
const (
	Plus     = byte('+')
	Minus    = byte('-')
	NoStrand = byte('.')
)

// ScoreColumn is the canonical name of the single numeric column that
// harmonized Sets expose.  Downstream matrix computation only ever reads
// this column, so it is agnostic to the originating assay.
const ScoreColumn = "score"

// Set is an ordered collection of genomic intervals.  Seqnames, Start, End
// and Strand always have equal length.  Names is either empty or parallel
// to the intervals.  Meta maps a column name to a float64 column parallel
// to the intervals.
type Set struct {
	Seqnames []string
	Start    []int
	End      []int
	Strand   []byte
	Names    []string
	Meta     map[string][]float64
}

// New returns a Set over the given intervals.  strand may be nil, in which
// case all intervals are unstranded.  New panics if the slice lengths
// disagree; this mirrors a programming error, not an input error.
func New(seqnames []string, start, end []int, strand []byte) Set {
	n := len(seqnames)
	if len(start) != n || len(end) != n || (strand != nil && len(strand) != n) {
		panic(fmt.Sprintf("granges.New: length mismatch: %d seqnames, %d starts, %d ends, %d strands",
			n, len(start), len(end), len(strand)))
	}
	if strand == nil {
		strand = make([]byte, n)
		for i := range strand {
			strand[i] = NoStrand
		}
	}
	return Set{
		Seqnames: seqnames,
		Start:    start,
		End:      end,
		Strand:   strand,
		Meta:     map[string][]float64{},
	}
}

// Len returns the number of intervals in the Set.
func (s Set) Len() int { return len(s.Seqnames) }

// Width returns End-Start of the i-th interval.
func (s Set) Width(i int) int { return s.End[i] - s.Start[i] }

// AddMeta returns a copy of the Set with the named column attached.
// The column must be parallel to the intervals.
func (s Set) AddMeta(name string, values []float64) (Set, error) {
	if len(values) != s.Len() {
		return Set{}, errors.Errorf("granges: meta column %s has %d values for %d intervals",
			name, len(values), s.Len())
	}
	out := s.shallowCopy()
	out.Meta[name] = values
	return out, nil
}

// MetaNames returns the names of all metadata columns in sorted order.
func (s Set) MetaNames() []string {
	names := make([]string, 0, len(s.Meta))
	for name := range s.Meta {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Score returns the harmonized score column, or an error if the Set has not
// been harmonized.
func (s Set) Score() ([]float64, error) {
	col, ok := s.Meta[ScoreColumn]
	if !ok {
		return nil, errors.Errorf("granges: no %q column; call Harmonize first (have %v)",
			ScoreColumn, s.MetaNames())
	}
	return col, nil
}

// FilterChrom returns the subset of intervals whose sequence name is exactly
// equal to chrom.  Name matching is string equality: "21" and "chr21" are
// different sequences.  A result with zero intervals is a valid, empty Set.
func (s Set) FilterChrom(chrom string) Set {
	keep := make([]int, 0, s.Len())
	for i, name := range s.Seqnames {
		if name == chrom {
			keep = append(keep, i)
		}
	}
	return s.Subset(keep)
}

// Subset returns a new Set holding the intervals at the given indices, in
// the given order.  All metadata columns are carried along.
func (s Set) Subset(indices []int) Set {
	out := New(make([]string, 0, len(indices)), make([]int, 0, len(indices)),
		make([]int, 0, len(indices)), make([]byte, 0, len(indices)))
	for _, i := range indices {
		out.Seqnames = append(out.Seqnames, s.Seqnames[i])
		out.Start = append(out.Start, s.Start[i])
		out.End = append(out.End, s.End[i])
		out.Strand = append(out.Strand, s.Strand[i])
	}
	if len(s.Names) > 0 {
		out.Names = make([]string, 0, len(indices))
		for _, i := range indices {
			out.Names = append(out.Names, s.Names[i])
		}
	}
	for name, col := range s.Meta {
		sub := make([]float64, 0, len(indices))
		for _, i := range indices {
			sub = append(sub, col[i])
		}
		out.Meta[name] = sub
	}
	return out
}

// Harmonize returns a Set exposing exactly one metadata column, named
// ScoreColumn, taken from the column named keep.  Every other column (and
// the name column) is dropped.  After Harmonize, two Sets originating from
// different assays are interchangeable for scoring purposes.
func (s Set) Harmonize(keep string) (Set, error) {
	col, ok := s.Meta[keep]
	if !ok {
		return Set{}, errors.Errorf("granges: cannot harmonize on missing column %q (have %v)",
			keep, s.MetaNames())
	}
	out := New(s.Seqnames, s.Start, s.End, s.Strand)
	out.Meta[ScoreColumn] = col
	return out, nil
}

// Promoters derives a window Set from the transcription start sites of the
// receiver.  For a '+' (or unstranded) interval the TSS is Start; for a '-'
// interval it is End.  Each window spans [tss-up, tss+down) for '+' strands
// and [tss-down, tss+up) for '-' strands, so that every window has width
// up+down and the up flank is always transcriptionally upstream.  Windows
// keep the strand of their source interval; metadata is not carried.
// Windows may extend below zero; callers that care clamp or let the scorer
// mark the positions missing.
func (s Set) Promoters(up, down int) Set {
	out := New(make([]string, s.Len()), make([]int, s.Len()),
		make([]int, s.Len()), make([]byte, s.Len()))
	if len(s.Names) > 0 {
		out.Names = make([]string, s.Len())
		copy(out.Names, s.Names)
	}
	for i := 0; i < s.Len(); i++ {
		out.Seqnames[i] = s.Seqnames[i]
		out.Strand[i] = s.Strand[i]
		if s.Strand[i] == Minus {
			tss := s.End[i]
			out.Start[i] = tss - down
			out.End[i] = tss + up
		} else {
			tss := s.Start[i]
			out.Start[i] = tss - up
			out.End[i] = tss + down
		}
	}
	return out
}

// Chroms returns the distinct sequence names present in the Set, sorted.
func (s Set) Chroms() []string {
	seen := map[string]bool{}
	for _, name := range s.Seqnames {
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IndexByChrom groups interval indices by sequence name.  The index order
// within each group follows Set order.
func (s Set) IndexByChrom() map[string][]int {
	out := map[string][]int{}
	for i, name := range s.Seqnames {
		out[name] = append(out[name], i)
	}
	return out
}

func (s Set) shallowCopy() Set {
	out := s
	out.Meta = make(map[string][]float64, len(s.Meta)+1)
	for name, col := range s.Meta {
		out.Meta[name] = col
	}
	return out
}
