// Package crawl implements the crawl engine: a breadth-first, level-synchronized
// traversal that fetches pages on one worker pool, extracts links on another,
// and bounds the number of concurrent downloads per host.
package crawl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/webcrawler"
	"golang.org/x/sync/errgroup"
)

var _ webcrawler.Crawler = (*Crawler)(nil)

// Defaults used when an option is not given or is not positive.
const (
	DefaultDownloaders     = 1
	DefaultExtractors      = 1
	DefaultPerHost         = 1
	DefaultShutdownTimeout = 800 * time.Millisecond
)

// Crawler downloads pages reachable from a root URL up to a given depth.
// Downloads run on one pool and link extraction on another, so slow parsing
// cannot hold up fetching. Crawler is safe for concurrent use; concurrent
// crawls share the pools and the per-host limits.
type Crawler struct {
	downloader webcrawler.Downloader
	hostOf     HostFunc
	logger     *slog.Logger

	downloaders     int
	extractors      int
	perHost         int
	shutdownTimeout time.Duration

	downloads *Pool
	extracts  *Pool
	gate      *hostGate

	closeOnce sync.Once
	closed    chan struct{}
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDownloaders sets the number of download workers.
func WithDownloaders(n int) Option {
	return func(c *Crawler) {
		c.downloaders = n
	}
}

// WithExtractors sets the number of link extraction workers.
func WithExtractors(n int) Option {
	return func(c *Crawler) {
		c.extractors = n
	}
}

// WithPerHost sets the maximum number of concurrent downloads per host.
func WithPerHost(n int) Option {
	return func(c *Crawler) {
		c.perHost = n
	}
}

// WithShutdownTimeout sets how long Close waits for the pools to drain
// before stopping them.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.shutdownTimeout = d
	}
}

// WithHostFunc replaces HostOf as the function that groups URLs by host.
func WithHostFunc(fn HostFunc) Option {
	return func(c *Crawler) {
		c.hostOf = fn
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler that fetches pages with downloader and starts
// its worker pools. Close must be called to stop them.
func NewCrawler(downloader webcrawler.Downloader, opts ...Option) *Crawler {
	c := &Crawler{
		downloader:      downloader,
		hostOf:          HostOf,
		downloaders:     DefaultDownloaders,
		extractors:      DefaultExtractors,
		perHost:         DefaultPerHost,
		shutdownTimeout: DefaultShutdownTimeout,
		closed:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.downloaders <= 0 {
		c.downloaders = DefaultDownloaders
	}
	if c.extractors <= 0 {
		c.extractors = DefaultExtractors
	}
	if c.perHost <= 0 {
		c.perHost = DefaultPerHost
	}
	if c.shutdownTimeout < 0 {
		c.shutdownTimeout = DefaultShutdownTimeout
	}

	c.downloads = NewPool("download", c.downloaders, c.logger)
	c.extracts = NewPool("extract", c.extractors, c.logger)
	c.gate = newHostGate(c.perHost, c.downloads)
	return c
}

// session is the state of a single Crawl call.
type session struct {
	visited visitedSet
	outcome *outcome
}

// Crawl downloads rootURL and every page reachable from it in at most
// depth-1 link hops, visiting each URL at most once.
//
// Failures are recorded per URL in the result and never returned. If ctx is
// canceled or the crawler is closed while a level is in progress, Crawl stops
// descending and returns what has been downloaded so far; tasks already
// dispatched keep running. An error is returned only if depth is less than 1
// or the crawler has been closed.
func (c *Crawler) Crawl(ctx context.Context, rootURL string, depth int) (*webcrawler.Result, error) {
	if depth < 1 {
		return nil, webcrawler.Errorf(webcrawler.EINVALID, "depth must be at least 1, got %d", depth)
	}
	select {
	case <-c.closed:
		return nil, webcrawler.Errorf(webcrawler.ECLOSED, "crawler closed")
	default:
	}

	s := &session{outcome: newOutcome()}
	s.visited.markIfNew(rootURL)

	frontier := []string{rootURL}
	for level := depth; level >= 1 && len(frontier) > 0; level-- {
		links, err := c.crawlLevel(ctx, s, frontier, level > 1)
		if err != nil {
			c.logger.Warn("crawl interrupted",
				"url", rootURL,
				"level", depth-level+1,
				"depth", depth,
				"err", err)
			break
		}

		frontier = nil
		for _, link := range links {
			if s.visited.markIfNew(link) {
				frontier = append(frontier, link)
			}
		}
	}

	return s.outcome.result(), nil
}

// crawlLevel downloads every URL of one level and waits for the level to
// finish. If extract is true, links of downloaded pages are extracted and
// returned.
func (c *Crawler) crawlLevel(ctx context.Context, s *session, urls []string, extract bool) ([]string, error) {
	barrier := newLevelBarrier()
	links := &linkCollector{}

	for _, url := range urls {
		host, err := c.hostOf(url)
		if err != nil {
			s.outcome.fail(url, err)
			continue
		}
		barrier.register()
		c.gate.acquire(host, c.downloadTask(s, url, host, barrier, links, extract))
	}

	if err := barrier.wait(ctx, c.closed); err != nil {
		return nil, err
	}
	return links.drain(), nil
}

// downloadTask fetches url. The host permit and the barrier registration
// are given back however the download ends.
func (c *Crawler) downloadTask(s *session, url, host string, barrier *levelBarrier, links *linkCollector, extract bool) Task {
	return func(ctx context.Context) {
		defer barrier.arrive()
		defer c.gate.release(host)

		doc, err := c.downloader.Download(ctx, url)
		if err != nil {
			s.outcome.fail(url, err)
			return
		}
		s.outcome.succeed(url)

		if !extract || doc == nil {
			return
		}
		barrier.register()
		if !c.extracts.Submit(c.extractTask(url, doc, barrier, links)) {
			barrier.arrive()
		}
	}
}

// extractTask collects the links of a downloaded document. Extraction
// failures are not recorded: the page stays downloaded and contributes no links.
func (c *Crawler) extractTask(url string, doc webcrawler.Document, barrier *levelBarrier, links *linkCollector) Task {
	return func(context.Context) {
		defer barrier.arrive()

		found, err := doc.ExtractLinks()
		if err != nil {
			c.logger.Debug("link extraction failed", "url", url, "err", err)
			return
		}
		links.add(found)
	}
}

// Close stops both worker pools. Queued and running tasks get the shutdown
// timeout to finish; after that queued tasks are dropped and running ones see
// their context canceled. A Crawl blocked on a level returns its partial
// result. Close always returns nil and may be called more than once.
func (c *Crawler) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)

		ctx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
		defer cancel()

		var g errgroup.Group
		g.Go(func() error { return c.downloads.Shutdown(ctx) })
		g.Go(func() error { return c.extracts.Shutdown(ctx) })
		if err := g.Wait(); err != nil {
			c.logger.Warn("worker pools did not drain in time", "timeout", c.shutdownTimeout, "err", err)
		}
	})
	return nil
}
