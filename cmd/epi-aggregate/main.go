// epi-aggregate renders aggregate views of epigenomic signal around
// promoters: it resolves the datasets for one cell type from a metadata
// index, fetches a methylation bigWig and a histone-mark broadPeak file,
// restricts both to one chromosome, aligns them to promoter windows from
// UCSC refGene, and writes a methylation heat map plus a meta-profile
// curve.  Optionally the whole workspace is snapshotted for later reuse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"

	"github.com/grailbio/epi/annotation"
	"github.com/grailbio/epi/encoding/bigwig"
	"github.com/grailbio/epi/encoding/broadpeak"
	"github.com/grailbio/epi/fetch"
	"github.com/grailbio/epi/granges"
	"github.com/grailbio/epi/metadata"
	"github.com/grailbio/epi/render"
	"github.com/grailbio/epi/scoremat"
	"github.com/grailbio/epi/workspace"
)

var (
	indexPath   = flag.String("index", "", "Metadata index TSV (id, celltype, assay, format, url)")
	cellType    = flag.String("celltype", "H1", "Cell type to select from the metadata index")
	methAssay   = flag.String("meth-assay", "RRBS", "Assay name of the methylation track in the index")
	peakAssay   = flag.String("peak-assay", "H3K4me3", "Assay name of the chromatin-mark track in the index")
	build       = flag.String("build", "hg18", "Genome build for promoter annotation")
	chrom       = flag.String("chrom", "chr21", "Chromosome to restrict both tracks to (exact name match)")
	up          = flag.Int("up", 1000, "Promoter flank upstream of the TSS, in bases")
	down        = flag.Int("down", 1000, "Promoter flank downstream of the TSS, in bases")
	binSize     = flag.Int("bin-size", 1, "Methylation bigWig bin size; 0 = file native")
	cacheDir    = flag.String("cache-dir", "epi-cache", "Directory for downloaded files")
	outPrefix   = flag.String("out", "epi-aggregate", "Output path prefix")
	parallelism = flag.Int("parallelism", 0, "Fan matrix scoring out over this many goroutines; <2 = serial")
	wsPath      = flag.String("workspace", "", "If set, snapshot the full workspace to this path")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -index <index.tsv> [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *indexPath == "" {
		usage()
		os.Exit(2)
	}
	ctx := vcontext.Background()
	if err := run(ctx); err != nil {
		log.Fatalf("epi-aggregate: %v", err)
	}
}

func run(ctx context.Context) error {
	idx, err := metadata.Load(ctx, *indexPath)
	if err != nil {
		return err
	}
	methSet, err := loadSignal(ctx, idx)
	if err != nil {
		return err
	}
	peakSet, err := loadPeaks(ctx, idx)
	if err != nil {
		return err
	}

	log.Printf("querying %s refGene promoters on %s (%d up, %d down)", *build, *chrom, *up, *down)
	db, err := annotation.Open(*build)
	if err != nil {
		return err
	}
	defer db.Close() // nolint: errcheck
	windows, err := db.Promoters(ctx, *chrom, *up, *down)
	if err != nil {
		return err
	}
	log.Printf("%d promoter windows", windows.Len())

	opts := scoremat.Opts{Width: *up + *down, Offset: -*up, Parallelism: *parallelism}
	methMat, err := scoremat.Score(methSet, windows, opts)
	if err != nil {
		return errors.Wrap(err, "methylation matrix")
	}
	peakMat, err := scoremat.Score(peakSet, windows, opts)
	if err != nil {
		return errors.Wrap(err, "peak matrix")
	}

	heatPath := *outPrefix + ".meth-heat.png"
	if err := render.Heatmap(methMat, heatPath, render.HeatmapOpts{
		Title:  fmt.Sprintf("%s %s methylation around TSS", *cellType, *chrom),
		XLabel: "position relative to TSS",
		YLabel: "promoter",
	}); err != nil {
		return err
	}
	log.Printf("wrote %s", heatPath)

	profilePath := *outPrefix + ".profile.png"
	if err := render.Profile([]render.Curve{
		{Name: *peakAssay, Offset: methMat.Offset, Means: peakMat.ColMeans()},
		{Name: *methAssay, Offset: methMat.Offset, Means: methMat.ColMeans()},
	}, profilePath, render.ProfileOpts{
		Title:  fmt.Sprintf("%s mean signal around TSS (%s)", *cellType, *chrom),
		XLabel: "position relative to TSS",
		YLabel: "mean score",
	}); err != nil {
		return err
	}
	log.Printf("wrote %s", profilePath)

	if *wsPath != "" {
		w := &workspace.Workspace{
			CellType:   *cellType,
			Build:      *build,
			Chrom:      *chrom,
			Meth:       methSet,
			Peaks:      peakSet,
			Windows:    windows,
			MethMatrix: methMat,
			PeakMatrix: peakMat,
		}
		if err := w.Save(ctx, *wsPath); err != nil {
			return err
		}
		log.Printf("snapshotted workspace to %s", *wsPath)
	}
	return nil
}

func findOne(idx *metadata.Index, assay string) (metadata.Record, error) {
	recs := idx.Find(*cellType, assay)
	if len(recs) == 0 {
		return metadata.Record{}, errors.Errorf("no %s/%s dataset in %s", *cellType, assay, *indexPath)
	}
	if len(recs) > 1 {
		log.Printf("%d %s/%s datasets in index, using %s", len(recs), *cellType, assay, recs[0].ID)
	}
	return recs[0], nil
}

func loadSignal(ctx context.Context, idx *metadata.Index) (granges.Set, error) {
	rec, err := findOne(idx, *methAssay)
	if err != nil {
		return granges.Set{}, err
	}
	path, err := fetch.Fetch(ctx, rec.URL, *cacheDir)
	if err != nil {
		return granges.Set{}, err
	}
	set, err := bigwig.Import(path, bigwig.Opts{Chrom: *chrom, BinSize: *binSize})
	if err != nil {
		return granges.Set{}, err
	}
	log.Printf("%s: %d methylation bins on %s", rec.ID, set.Len(), *chrom)
	return set.Harmonize("meth")
}

func loadPeaks(ctx context.Context, idx *metadata.Index) (granges.Set, error) {
	rec, err := findOne(idx, *peakAssay)
	if err != nil {
		return granges.Set{}, err
	}
	path, err := fetch.Fetch(ctx, rec.URL, *cacheDir)
	if err != nil {
		return granges.Set{}, err
	}
	set, err := broadpeak.Import(ctx, path, broadpeak.DefaultSchema)
	if err != nil {
		return granges.Set{}, err
	}
	set = set.FilterChrom(*chrom)
	log.Printf("%s: %d peaks on %s", rec.ID, set.Len(), *chrom)
	return set.Harmonize("signalValue")
}
