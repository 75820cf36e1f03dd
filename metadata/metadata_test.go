package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"
)

const sampleIndex = "id\tcelltype\tassay\tformat\turl\n" +
	"E001\tH1\tRRBS\tbigWig\thttps://example.org/E001.bw\n" +
	"E002\tH1\tH3K4me3\tbroadPeak\thttps://example.org/E002.broadPeak.gz\n" +
	"E003\tIMR90\tRRBS\tbigWig\thttps://example.org/E003.bw\n"

func TestLoadAndFind(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.tsv")
	expect.NoError(t, os.WriteFile(path, []byte(sampleIndex), 0644))

	idx, err := Load(ctx, path)
	expect.NoError(t, err)
	expect.EQ(t, len(idx.Records), 3)
	expect.EQ(t, idx.Records[0].ID, "E001")
	expect.EQ(t, idx.Records[1].Format, "broadPeak")

	rrbs := idx.Find("h1", "rrbs")
	expect.EQ(t, len(rrbs), 1)
	expect.EQ(t, rrbs[0].URL, "https://example.org/E001.bw")

	expect.EQ(t, len(idx.Find("H1", "H3K27ac")), 0)
	expect.EQ(t, len(idx.Find("K562", "RRBS")), 0)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.tsv"))
	expect.NotNil(t, err)
}
