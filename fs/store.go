// Package fs provides file-based caching of fetched pages.
package fs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webcrawler"
)

// Ensure ContentStore implements webcrawler.ContentStore at compile time.
var _ webcrawler.ContentStore = (*ContentStore)(nil)

// ContentStore keeps one file per URL in a directory. A file holds the URL
// the page was served from on its first line, followed by the body. Writes
// go to a temporary file that is renamed into place, so readers never see a
// partially written page.
type ContentStore struct {
	dir string
}

// NewContentStore creates a ContentStore rooted at dir. The directory is
// created on the first Put.
func NewContentStore(dir string) *ContentStore {
	return &ContentStore{dir: dir}
}

// Dir returns the directory pages are stored in.
func (s *ContentStore) Dir() string {
	return s.dir
}

// Path returns the file that holds the content of url.
func (s *ContentStore) Path(url string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.html", xxhash.Sum64String(url)))
}

// Get returns the stored page of url, or ENOTFOUND if there is none.
func (s *ContentStore) Get(ctx context.Context, url string) (*webcrawler.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(url))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, webcrawler.Errorf(webcrawler.ENOTFOUND, "no cached content for %s", url)
	}
	if err != nil {
		return nil, err
	}

	// The first line holds the URL the page was served from.
	finalURL, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok || len(finalURL) == 0 {
		return nil, webcrawler.Errorf(webcrawler.EINTERNAL, "corrupt cache entry for %s", url)
	}
	return &webcrawler.Page{URL: string(finalURL), Body: body}, nil
}

// Put stores page as the content of url, replacing any previous content.
func (s *ContentStore) Put(ctx context.Context, url string, page *webcrawler.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page == nil || page.URL == "" || strings.ContainsAny(page.URL, "\r\n") {
		return webcrawler.Errorf(webcrawler.EINVALID, "page of %s needs a single-line URL", url)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".page-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	_, _ = w.WriteString(page.URL)
	_ = w.WriteByte('\n')
	_, _ = w.Write(page.Body)
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.Path(url))
}
