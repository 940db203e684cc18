package rod

import (
	"context"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/goquery"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds the time spent rendering one page.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Downloader implements webcrawler.Downloader at compile time.
var _ webcrawler.Downloader = (*Downloader)(nil)

// Downloader renders pages in headless Chrome and returns the resulting HTML.
// Downloader is safe for concurrent use by multiple goroutines.
type Downloader struct {
	manager *BrowserManager
	timeout time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the per-page render timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// NewDownloader creates a Downloader that opens pages on manager's browser.
// The caller keeps ownership of manager and must close it.
func NewDownloader(manager *BrowserManager, opts ...Option) *Downloader {
	dl := &Downloader{
		manager: manager,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(dl)
	}
	return dl
}

// Download navigates to url, waits for the page to load, and returns the
// rendered HTML as a document whose links resolve against the page's final URL.
func (dl *Downloader) Download(ctx context.Context, url string) (webcrawler.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dl.timeout)
		defer cancel()
	}

	browser, err := dl.manager.acquire()
	if err != nil {
		return nil, err
	}
	defer dl.manager.release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return goquery.NewDocument(finalURL, []byte(html)), nil
}
