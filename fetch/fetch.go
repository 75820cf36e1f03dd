// Package fetch downloads remote data files into a local cache directory.
// One attempt per file, no retry: an unreachable resource aborts the run
// immediately, per the pipeline's fail-fast contract.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Fetch downloads rawurl into cacheDir and returns the local path.  If the
// target file already exists in cacheDir it is reused without touching the
// network.  The download is written to a temporary file and renamed so a
// failed transfer never leaves a truncated file behind.
func Fetch(ctx context.Context, rawurl, cacheDir string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: bad url %s", rawurl)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return "", errors.Errorf("fetch: url %s has no file component", rawurl)
	}
	dest := filepath.Join(cacheDir, base)
	if _, err := os.Stat(dest); err == nil {
		log.Printf("fetch: using cached %s", dest)
		return dest, nil
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", errors.Wrapf(err, "fetch: mkdir %s", cacheDir)
	}

	log.Printf("fetch: downloading %s", rawurl)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: %s", rawurl)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch: %s", rawurl)
	}
	defer resp.Body.Close() // nolint: errcheck
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch: %s: %s", rawurl, resp.Status)
	}

	tmp, err := os.CreateTemp(cacheDir, base+".download*")
	if err != nil {
		return "", errors.Wrap(err, "fetch: tempfile")
	}
	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name()) // nolint: errcheck
		return "", errors.Wrapf(err, "fetch: %s", rawurl)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name()) // nolint: errcheck
		return "", errors.Wrapf(err, "fetch: rename %s", dest)
	}
	log.Printf("fetch: wrote %s (%d bytes)", dest, n)
	return dest, nil
}
