// Package annotation queries the UCSC genome browser's public MySQL mirror
// for gene models, promoter windows, CpG islands and cytobands.  All
// queries are read-only and parameterized by genome build (e.g. "hg18",
// "hg38").  UCSC SQL tables store 0-based half-open coordinates, matching
// granges conventions, so no coordinate shifting happens here.
package annotation

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql" // database/sql driver
	"github.com/pkg/errors"

	"github.com/grailbio/epi/granges"
)

// DefaultHost is the public UCSC mirror.
const DefaultHost = "genome-mysql.cse.ucsc.edu:3306"

// DB is a connection to one genome build's annotation database.
type DB struct {
	db    *sql.DB
	build string
}

// Open connects to the annotation database for the given genome build.
func Open(build string) (*DB, error) {
	return OpenHost(build, DefaultHost)
}

// OpenHost connects to a specific mirror host.
func OpenHost(build, host string) (*DB, error) {
	db, err := sql.Open("mysql", fmt.Sprintf("genome@tcp(%s)/%s", host, build))
	if err != nil {
		return nil, errors.Wrapf(err, "annotation: open %s", build)
	}
	if err := db.Ping(); err != nil {
		db.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "annotation: ping %s/%s", host, build)
	}
	return &DB{db: db, build: build}, nil
}

// Build returns the genome build this DB serves.
func (d *DB) Build() string { return d.build }

// Close releases the underlying connection.
func (d *DB) Close() error { return d.db.Close() }

// Transcript is one row of the refGene table.
type Transcript struct {
	Name       string // transcript accession, e.g. NM_001354870
	Symbol     string // gene symbol (refGene name2)
	Chrom      string
	Strand     byte
	TxStart    int
	TxEnd      int
	ExonStarts []int
	ExonEnds   []int
}

// Transcripts returns every refGene transcript annotated with the given
// gene symbol.  Symbols match exactly (UCSC collation is case-insensitive).
func (d *DB) Transcripts(ctx context.Context, symbol string) ([]Transcript, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name, name2, chrom, strand, txStart, txEnd, exonStarts, exonEnds
		 FROM refGene WHERE name2 = ?`, symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "annotation: refGene lookup %s", symbol)
	}
	defer rows.Close() // nolint: errcheck

	var out []Transcript
	for rows.Next() {
		var (
			tr                   Transcript
			strand               string
			exonStarts, exonEnds string
		)
		if err := rows.Scan(&tr.Name, &tr.Symbol, &tr.Chrom, &strand,
			&tr.TxStart, &tr.TxEnd, &exonStarts, &exonEnds); err != nil {
			return nil, errors.Wrap(err, "annotation: refGene scan")
		}
		tr.Strand = strandByte(strand)
		if tr.ExonStarts, err = parseCommaInts(exonStarts); err != nil {
			return nil, errors.Wrapf(err, "annotation: %s exonStarts", tr.Name)
		}
		if tr.ExonEnds, err = parseCommaInts(exonEnds); err != nil {
			return nil, errors.Wrapf(err, "annotation: %s exonEnds", tr.Name)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Locus is the effective gene-model region for one symbol.
type Locus struct {
	Symbol string
	Chrom  string
	Strand byte
	Start  int
	End    int
	// Exons merged across every matched transcript, sorted by start.
	ExonStarts []int
	ExonEnds   []int
}

// GeneLocus resolves a gene symbol to its locus boundaries.  When the
// symbol matches several transcripts the boundary is the minimum start and
// maximum end among the matches, with exons merged across transcripts.
// This deliberately collapses transcript structure; genes with unrelated
// transcript clusters (readthroughs) get one wide locus.
func (d *DB) GeneLocus(ctx context.Context, symbol string) (Locus, error) {
	trs, err := d.Transcripts(ctx, symbol)
	if err != nil {
		return Locus{}, err
	}
	return ResolveLocus(symbol, trs)
}

// ResolveLocus computes the effective locus from a set of transcripts for
// one symbol.  Zero transcripts is an error; one or more are collapsed via
// the min-start/max-end heuristic.  Transcripts on a chromosome other than
// the first match are ignored with respect to boundaries.
func ResolveLocus(symbol string, trs []Transcript) (Locus, error) {
	if len(trs) == 0 {
		return Locus{}, errors.Errorf("annotation: no transcript matches symbol %q", symbol)
	}
	loc := Locus{
		Symbol: symbol,
		Chrom:  trs[0].Chrom,
		Strand: trs[0].Strand,
		Start:  trs[0].TxStart,
		End:    trs[0].TxEnd,
	}
	var starts, ends []int
	for _, tr := range trs {
		if tr.Chrom != loc.Chrom {
			continue
		}
		if tr.TxStart < loc.Start {
			loc.Start = tr.TxStart
		}
		if tr.TxEnd > loc.End {
			loc.End = tr.TxEnd
		}
		starts = append(starts, tr.ExonStarts...)
		ends = append(ends, tr.ExonEnds...)
	}
	loc.ExonStarts, loc.ExonEnds = mergeIntervals(starts, ends)
	return loc, nil
}

// Promoters extracts strand-oriented promoter windows for every refGene
// transcript on the given chromosome (all chromosomes if chrom is empty).
// Windows are up+down wide around each TSS; see granges.Set.Promoters for
// the orientation rules.
func (d *DB) Promoters(ctx context.Context, chrom string, up, down int) (granges.Set, error) {
	query := `SELECT name2, chrom, strand, txStart, txEnd FROM refGene`
	args := []interface{}{}
	if chrom != "" {
		query += ` WHERE chrom = ?`
		args = append(args, chrom)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return granges.Set{}, errors.Wrap(err, "annotation: refGene promoters")
	}
	defer rows.Close() // nolint: errcheck

	var (
		names    []string
		seqnames []string
		start    []int
		end      []int
		strand   []byte
	)
	for rows.Next() {
		var (
			name, seqname, st string
			txStart, txEnd    int
		)
		if err := rows.Scan(&name, &seqname, &st, &txStart, &txEnd); err != nil {
			return granges.Set{}, errors.Wrap(err, "annotation: refGene scan")
		}
		names = append(names, name)
		seqnames = append(seqnames, seqname)
		start = append(start, txStart)
		end = append(end, txEnd)
		strand = append(strand, strandByte(st))
	}
	if err := rows.Err(); err != nil {
		return granges.Set{}, errors.Wrap(err, "annotation: refGene rows")
	}
	genes := granges.New(seqnames, start, end, strand)
	genes.Names = names
	return genes.Promoters(up, down), nil
}

// CpGIslands returns the cpgIslandExt annotations for one chromosome.
func (d *DB) CpGIslands(ctx context.Context, chrom string) (granges.Set, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT chrom, chromStart, chromEnd, name FROM cpgIslandExt WHERE chrom = ?`, chrom)
	if err != nil {
		return granges.Set{}, errors.Wrap(err, "annotation: cpgIslandExt")
	}
	defer rows.Close() // nolint: errcheck

	var (
		seqnames []string
		start    []int
		end      []int
		names    []string
	)
	for rows.Next() {
		var (
			seqname, name string
			from, to      int
		)
		if err := rows.Scan(&seqname, &from, &to, &name); err != nil {
			return granges.Set{}, errors.Wrap(err, "annotation: cpgIslandExt scan")
		}
		seqnames = append(seqnames, seqname)
		start = append(start, from)
		end = append(end, to)
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return granges.Set{}, errors.Wrap(err, "annotation: cpgIslandExt rows")
	}
	out := granges.New(seqnames, start, end, nil)
	out.Names = names
	return out, nil
}

// Cytoband is one Giemsa band of a chromosome ideogram.
type Cytoband struct {
	Chrom string
	Start int
	End   int
	Name  string
	Stain string // gneg, gpos25..gpos100, acen, gvar, stalk
}

// Cytobands returns the cytoBand rows for one chromosome, in coordinate
// order.
func (d *DB) Cytobands(ctx context.Context, chrom string) ([]Cytoband, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT chrom, chromStart, chromEnd, name, gieStain
		 FROM cytoBand WHERE chrom = ? ORDER BY chromStart`, chrom)
	if err != nil {
		return nil, errors.Wrap(err, "annotation: cytoBand")
	}
	defer rows.Close() // nolint: errcheck

	var out []Cytoband
	for rows.Next() {
		var b Cytoband
		if err := rows.Scan(&b.Chrom, &b.Start, &b.End, &b.Name, &b.Stain); err != nil {
			return nil, errors.Wrap(err, "annotation: cytoBand scan")
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func strandByte(s string) byte {
	if len(s) == 1 && (s[0] == granges.Plus || s[0] == granges.Minus) {
		return s[0]
	}
	return granges.NoStrand
}

// parseCommaInts parses UCSC's trailing-comma integer blobs, e.g.
// "100,200,300,".
func parseCommaInts(s string) ([]int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(err, "bad integer list %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

// mergeIntervals merges overlapping [start, end) pairs and returns the
// merged pairs sorted by start.
func mergeIntervals(starts, ends []int) ([]int, []int) {
	if len(starts) == 0 {
		return nil, nil
	}
	type iv struct{ s, e int }
	ivs := make([]iv, len(starts))
	for i := range starts {
		ivs[i] = iv{starts[i], ends[i]}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].s < ivs[j].s })
	var ms, me []int
	curS, curE := ivs[0].s, ivs[0].e
	for _, v := range ivs[1:] {
		if v.s <= curE {
			if v.e > curE {
				curE = v.e
			}
			continue
		}
		ms = append(ms, curS)
		me = append(me, curE)
		curS, curE = v.s, v.e
	}
	ms = append(ms, curS)
	me = append(me, curE)
	return ms, me
}
