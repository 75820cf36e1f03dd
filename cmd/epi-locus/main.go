// epi-locus renders a genome-browser style composite figure for each gene
// symbol given: chromosome ideogram, coordinate axis, gene model, CpG
// islands, and histograms of the methylation and chromatin-mark signal,
// stacked over a shared coordinate window around the gene's locus.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

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
)

var (
	indexPath = flag.String("index", "", "Metadata index TSV (id, celltype, assay, format, url)")
	cellType  = flag.String("celltype", "H1", "Cell type to select from the metadata index")
	methAssay = flag.String("meth-assay", "RRBS", "Assay name of the methylation track in the index")
	peakAssay = flag.String("peak-assay", "H3K4me3", "Assay name of the chromatin-mark track in the index")
	build     = flag.String("build", "hg18", "Genome build for annotation lookups")
	genes     = flag.String("genes", "", "Comma-separated gene symbols to plot, e.g. SOD1,DIP2A")
	pad       = flag.Int("pad", 10000, "Bases added on both sides of each locus")
	binSize   = flag.Int("bin-size", 1, "Methylation bigWig bin size; 0 = file native")
	cacheDir  = flag.String("cache-dir", "epi-cache", "Directory for downloaded files")
	outPrefix = flag.String("out", "epi-locus", "Output path prefix; figures land at <prefix>.<gene>.png")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -index <index.tsv> -genes SOD1,DIP2A [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *indexPath == "" || *genes == "" {
		usage()
		os.Exit(2)
	}
	ctx := vcontext.Background()
	if err := run(ctx); err != nil {
		log.Fatalf("epi-locus: %v", err)
	}
}

func run(ctx context.Context) error {
	idx, err := metadata.Load(ctx, *indexPath)
	if err != nil {
		return err
	}
	db, err := annotation.Open(*build)
	if err != nil {
		return err
	}
	defer db.Close() // nolint: errcheck

	for _, symbol := range strings.Split(*genes, ",") {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		if err := plotLocus(ctx, idx, db, symbol); err != nil {
			return errors.Wrapf(err, "gene %s", symbol)
		}
	}
	return nil
}

func plotLocus(ctx context.Context, idx *metadata.Index, db *annotation.DB, symbol string) error {
	locus, err := db.GeneLocus(ctx, symbol)
	if err != nil {
		return err
	}
	region := render.Region{
		Build: *build,
		Chrom: locus.Chrom,
		From:  locus.Start,
		To:    locus.End,
	}.Pad(*pad)
	log.Printf("%s locus %s:%d-%d (window %d-%d)",
		symbol, locus.Chrom, locus.Start, locus.End, region.From, region.To)

	bands, err := db.Cytobands(ctx, locus.Chrom)
	if err != nil {
		return err
	}
	cpg, err := db.CpGIslands(ctx, locus.Chrom)
	if err != nil {
		return err
	}
	meth, err := loadTrack(ctx, idx, *methAssay, locus.Chrom)
	if err != nil {
		return err
	}
	peaks, err := loadTrack(ctx, idx, *peakAssay, locus.Chrom)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s.%s.png", *outPrefix, symbol)
	err = render.Compose(region, []render.Track{
		render.IdeogramTrack{Bands: bands},
		render.AxisTrack{},
		render.GeneModelTrack{Locus: locus},
		render.AnnotationTrack{Name: "CpG islands", Set: cpg},
		render.DataTrack{Name: *methAssay, Set: meth, MaxY: 1},
		render.DataTrack{Name: *peakAssay, Set: peaks},
	}, path, render.ComposeOpts{})
	if err != nil {
		return err
	}
	log.Printf("wrote %s", path)
	return nil
}

// loadTrack fetches and harmonizes one dataset for the given assay,
// restricted to chrom.
func loadTrack(ctx context.Context, idx *metadata.Index, assay, chrom string) (granges.Set, error) {
	recs := idx.Find(*cellType, assay)
	if len(recs) == 0 {
		return granges.Set{}, errors.Errorf("no %s/%s dataset in %s", *cellType, assay, *indexPath)
	}
	rec := recs[0]
	path, err := fetch.Fetch(ctx, rec.URL, *cacheDir)
	if err != nil {
		return granges.Set{}, err
	}
	switch rec.Format {
	case "bigWig":
		set, err := bigwig.Import(path, bigwig.Opts{Chrom: chrom, BinSize: *binSize})
		if err != nil {
			return granges.Set{}, err
		}
		return set.Harmonize("meth")
	case "broadPeak":
		set, err := broadpeak.Import(ctx, path, broadpeak.DefaultSchema)
		if err != nil {
			return granges.Set{}, err
		}
		return set.FilterChrom(chrom).Harmonize("signalValue")
	default:
		return granges.Set{}, errors.Errorf("%s: unsupported format %q", rec.ID, rec.Format)
	}
}
