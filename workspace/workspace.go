// Package workspace persists the pipeline's in-memory products so a run
// can be inspected or resumed without refetching anything.  The snapshot
// is a single gob blob written through base/file, so local and s3 paths
// both work.
package workspace

import (
	"context"
	"encoding/gob"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/grailbio/epi/annotation"
	"github.com/grailbio/epi/granges"
	"github.com/grailbio/epi/scoremat"
)

// Workspace captures the pipeline state after any stage.  Zero-valued
// fields are simply stages that have not run yet; a snapshot taken before
// a failing stage still holds everything computed so far.
type Workspace struct {
	CellType string
	Build    string
	Chrom    string

	// Harmonized inputs.
	Meth  granges.Set
	Peaks granges.Set

	// Promoter windows and the matrices aligned to them.
	Windows    granges.Set
	MethMatrix *scoremat.Matrix
	PeakMatrix *scoremat.Matrix

	// Locus-level products.
	Loci       []annotation.Locus
	CpGIslands granges.Set
	Cytobands  []annotation.Cytoband
}

// Save writes the workspace snapshot to path.
func (w *Workspace) Save(ctx context.Context, path string) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "workspace: create %s", path)
	}
	if err := gob.NewEncoder(out.Writer(ctx)).Encode(w); err != nil {
		out.Close(ctx) // nolint: errcheck
		return errors.Wrapf(err, "workspace: encode %s", path)
	}
	if err := out.Close(ctx); err != nil {
		return errors.Wrapf(err, "workspace: close %s", path)
	}
	return nil
}

// Load reads a workspace snapshot from path.
func Load(ctx context.Context, path string) (*Workspace, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "workspace: open %s", path)
	}
	defer in.Close(ctx) // nolint: errcheck
	w := &Workspace{}
	if err := gob.NewDecoder(in.Reader(ctx)).Decode(w); err != nil {
		return nil, errors.Wrapf(err, "workspace: decode %s", path)
	}
	return w, nil
}
