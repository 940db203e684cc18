// Package webcrawler provides a concurrent, depth-bounded web crawler.
// It fetches a root page, follows the links it contains breadth-first up to
// a configured depth, and reports which URLs were downloaded and which
// failed, while bounding both total and per-host concurrency.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/).
package webcrawler

import "context"

// Crawler walks the link graph reachable from a root URL.
type Crawler interface {
	// Crawl downloads url and every page reachable from it in at most
	// depth-1 link hops. Per-URL failures are reported in the Result;
	// the returned error is reserved for invalid arguments or a closed crawler.
	Crawl(ctx context.Context, url string, depth int) (*Result, error)

	// Close releases the crawler's workers. It is safe to call more than once.
	Close() error
}

// Downloader fetches a resource by URL.
type Downloader interface {
	// Download fetches the URL and returns the fetched document.
	// The context controls timeout and cancellation.
	Download(ctx context.Context, url string) (Document, error)
}

// Document is fetched content that can report the links it contains.
type Document interface {
	// ExtractLinks returns the absolute URLs referenced by the document.
	ExtractLinks() ([]string, error)
}

// Result holds the outcome of a crawl.
type Result struct {
	// Downloaded lists every URL fetched successfully, in no particular order.
	Downloaded []string

	// Errors maps each URL that could not be downloaded to its failure.
	// A URL never appears in both Downloaded and Errors.
	Errors map[string]error
}

// Page is fetched content together with the URL it was served from.
type Page struct {
	// URL is the final URL after redirects, the base for relative links.
	URL  string
	Body []byte
}

// ContentStore caches fetched pages keyed by the requested URL.
type ContentStore interface {
	// Get returns the cached page for url.
	// Returns ENOTFOUND if nothing is cached.
	Get(ctx context.Context, url string) (*Page, error)

	// Put stores page as the cached content of url.
	Put(ctx context.Context, url string, page *Page) error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
