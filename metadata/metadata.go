// Package metadata resolves which datasets belong to a cell type of
// interest.  The index is a TSV export of the experiment spreadsheet with
// columns
//
//	id  celltype  assay  format  url
//
// in that order, one data file per row.
package metadata

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Record describes one remote data file.
type Record struct {
	ID       string
	CellType string
	Assay    string
	Format   string
	URL      string
}

// Index is a loaded metadata spreadsheet.
type Index struct {
	Records []Record
}

// Load reads a metadata TSV from a local or remote (base/file) path.
// The header row is required; columns are positional.
func Load(ctx context.Context, path string) (*Index, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "metadata: open %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck

	r := tsv.NewReader(in.Reader(ctx))
	r.HasHeaderRow = true

	idx := &Index{}
	row := struct {
		ID       string
		CellType string
		Assay    string
		Format   string
		URL      string
	}{}
	line := 1
	for {
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "metadata: %s:%d", path, line)
		}
		line++
		idx.Records = append(idx.Records, Record(row))
	}
	return idx, nil
}

// Find returns the records matching the given cell type and assay.  Both
// matches are case-insensitive.  Zero matches yields an empty slice, not an
// error; callers decide whether an empty result is fatal.
func (idx *Index) Find(cellType, assay string) []Record {
	var out []Record
	for _, rec := range idx.Records {
		if strings.EqualFold(rec.CellType, cellType) && strings.EqualFold(rec.Assay, assay) {
			out = append(out, rec)
		}
	}
	return out
}
