// Package broadpeak reads ENCODE broadPeak files (BED6+3) into granges
// Sets.  A broadPeak line is
//
//	chrom  start  end  name  score  strand  signalValue  pValue  qValue
//
// where everything after strand is a numeric column declared by the
// schema.  The declared schema must match the file: a line with a
// different column count is a parse error, not a best-effort row, because
// silent column misalignment corrupts every downstream score.
package broadpeak

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/epi/granges"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// The six fixed BED columns preceding the schema's extra columns.
const fixedColumns = 6

// Schema declares the numeric columns that follow the six fixed BED
// columns.  Each extra column becomes a metadata column of the same name.
type Schema struct {
	Extra []string
}

// DefaultSchema matches ENCODE broadPeak output.
var DefaultSchema = Schema{Extra: []string{"signalValue", "pValue", "qValue"}}

// Read parses broadPeak records from r.  The fixed "score" column (column
// five) is attached as metadata column "score"; each schema column is
// attached under its declared name.  Blank lines and "track" header lines
// are skipped.
func Read(r io.Reader, schema Schema) (granges.Set, error) {
	want := fixedColumns + len(schema.Extra)
	var (
		seqnames []string
		start    []int
		end      []int
		strand   []byte
		names    []string
		score    []float64
		extra    = make([][]float64, len(schema.Extra))
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "track" || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != want {
			return granges.Set{}, errors.Errorf(
				"broadpeak: line %d has %d columns, schema declares %d (6 fixed + %d extra)",
				lineno, len(fields), want, len(schema.Extra))
		}
		s, err := strconv.Atoi(fields[1])
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "broadpeak: line %d: bad start", lineno)
		}
		e, err := strconv.Atoi(fields[2])
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "broadpeak: line %d: bad end", lineno)
		}
		sc, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "broadpeak: line %d: bad score", lineno)
		}
		for j, name := range schema.Extra {
			v, err := strconv.ParseFloat(fields[fixedColumns+j], 64)
			if err != nil {
				return granges.Set{}, errors.Wrapf(err, "broadpeak: line %d: bad %s", lineno, name)
			}
			extra[j] = append(extra[j], v)
		}
		seqnames = append(seqnames, fields[0])
		start = append(start, s)
		end = append(end, e)
		names = append(names, fields[3])
		score = append(score, sc)
		st := granges.NoStrand
		if len(fields[5]) == 1 && (fields[5][0] == granges.Plus || fields[5][0] == granges.Minus) {
			st = fields[5][0]
		}
		strand = append(strand, st)
	}
	if err := scanner.Err(); err != nil {
		return granges.Set{}, errors.Wrap(err, "broadpeak: read")
	}
	out := granges.New(seqnames, start, end, strand)
	out.Names = names
	out.Meta["score"] = score
	for j, name := range schema.Extra {
		if extra[j] == nil {
			extra[j] = []float64{}
		}
		out.Meta[name] = extra[j]
	}
	return out, nil
}

// Import reads a broadPeak file from a local or remote (base/file) path.
// Files ending in .gz are decompressed transparently.
func Import(ctx context.Context, path string, schema Schema) (granges.Set, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return granges.Set{}, errors.Wrapf(err, "broadpeak: open %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	r := io.Reader(in.Reader(ctx))
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return granges.Set{}, errors.Wrapf(err, "broadpeak: gunzip %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	set, err := Read(r, schema)
	if err != nil {
		return granges.Set{}, errors.Wrapf(err, "broadpeak: %s", path)
	}
	return set, nil
}
