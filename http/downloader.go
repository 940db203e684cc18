// Package http provides an HTTP-based implementation of webcrawler.Downloader
// for static sites that don't require JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/goquery"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize is the largest response body read by default (10 MiB).
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies the crawler to the sites it visits.
const DefaultUserAgent = "webcrawler/1.0"

// Ensure Downloader implements webcrawler.Downloader at compile time.
var _ webcrawler.Downloader = (*Downloader)(nil)

// Downloader retrieves pages with plain HTTP GET requests.
// Unlike rod.Downloader, this does not execute JavaScript.
// Downloader is safe for concurrent use by multiple goroutines.
type Downloader struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	store       webcrawler.ContentStore
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithMaxBodySize limits how many bytes of a response body are accepted.
// Larger responses fail with EFETCH.
func WithMaxBodySize(n int64) Option {
	return func(dl *Downloader) {
		dl.maxBodySize = n
	}
}

// WithContentStore makes the Downloader serve pages from store when cached
// and save every page it fetches to store.
func WithContentStore(store webcrawler.ContentStore) Option {
	return func(dl *Downloader) {
		dl.store = store
	}
}

// WithClient replaces the HTTP client. The timeout option is ignored when
// a client is given.
func WithClient(client *http.Client) Option {
	return func(dl *Downloader) {
		dl.client = client
	}
}

// NewDownloader creates a new HTTP-based Downloader.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(dl)
	}

	if dl.client == nil {
		dl.client = &http.Client{
			Timeout: dl.timeout,
		}
	}

	return dl
}

// Download returns the page at url, from the content store if it holds it
// and over HTTP otherwise. Responses other than 2xx fail with EFETCH. Cached
// pages keep the URL they were first served from, so their links resolve
// the same way as on the original fetch.
func (dl *Downloader) Download(ctx context.Context, url string) (webcrawler.Document, error) {
	if dl.store != nil {
		page, err := dl.store.Get(ctx, url)
		if err == nil {
			return goquery.NewDocument(page.URL, page.Body), nil
		}
		if webcrawler.ErrorCode(err) != webcrawler.ENOTFOUND {
			return nil, fmt.Errorf("read cached %s: %w", url, err)
		}
	}

	finalURL, body, err := dl.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if dl.store != nil {
		if err := dl.store.Put(ctx, url, &webcrawler.Page{URL: finalURL, Body: body}); err != nil {
			return nil, fmt.Errorf("cache %s: %w", url, err)
		}
	}

	return goquery.NewDocument(finalURL, body), nil
}

// fetch performs the GET request and returns the URL the response came
// from, after redirects, together with the body.
func (dl *Downloader) fetch(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}
	if dl.userAgent != "" {
		req.Header.Set("User-Agent", dl.userAgent)
	}

	resp, err := dl.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, webcrawler.Errorf(webcrawler.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dl.maxBodySize+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(body)) > dl.maxBodySize {
		return "", nil, webcrawler.Errorf(webcrawler.EFETCH, "body of %s exceeds %d bytes", url, dl.maxBodySize)
	}

	return resp.Request.URL.String(), body, nil
}
