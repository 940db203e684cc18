package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/crawl"
	"github.com/fwojciec/webcrawler/fs"
	crawlhttp "github.com/fwojciec/webcrawler/http"
	"github.com/fwojciec/webcrawler/rod"
	crawlslog "github.com/fwojciec/webcrawler/slog"
)

// Validate checks the numeric arguments before the crawl starts.
func (c *CrawlCmd) Validate() error {
	switch {
	case c.Depth < 1:
		return webcrawler.Errorf(webcrawler.EINVALID, "depth must be at least 1")
	case c.Downloaders < 1:
		return webcrawler.Errorf(webcrawler.EINVALID, "downloaders must be at least 1")
	case c.Extractors < 1:
		return webcrawler.Errorf(webcrawler.EINVALID, "extractors must be at least 1")
	case c.PerHost < 1:
		return webcrawler.Errorf(webcrawler.EINVALID, "per-host must be at least 1")
	case c.Rate < 0:
		return webcrawler.Errorf(webcrawler.EINVALID, "rate must not be negative")
	}
	return nil
}

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	downloader, cleanup, err := c.newDownloader(deps)
	if err != nil {
		return err
	}
	defer cleanup()

	crawler := crawl.NewCrawler(downloader,
		crawl.WithDownloaders(c.Downloaders),
		crawl.WithExtractors(c.Extractors),
		crawl.WithPerHost(c.PerHost),
		crawl.WithLogger(deps.Logger),
	)
	defer crawler.Close()

	started := time.Now()
	result, err := crawler.Crawl(deps.Ctx, c.URL, c.Depth)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawler.ErrorMessage(err))
		return err
	}
	finished := time.Now()

	printResult(deps.Stdout, result.Downloaded, errorMessages(result.Errors))

	if c.Record {
		// An interrupted crawl is still recorded with its partial result.
		run := webcrawler.NewRun(c.URL, c.Depth, result, started, finished)
		if err := deps.Runs.CreateRun(context.WithoutCancel(deps.Ctx), run); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webcrawler.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Recorded run %s\n", run.ID)
	}

	return nil
}

// newDownloader assembles the downloader chain selected by the flags. The
// returned cleanup function releases the browser when --render is used.
func (c *CrawlCmd) newDownloader(deps *Dependencies) (webcrawler.Downloader, func(), error) {
	var downloader webcrawler.Downloader
	cleanup := func() {}

	if c.Render {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		cleanup = func() { _ = manager.Close() }
		downloader = rod.NewDownloader(manager, rod.WithTimeout(c.Timeout))
	} else {
		dir := c.CacheDir
		if dir == "" {
			var err error
			dir, err = os.MkdirTemp("", "downloaded")
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		store := fs.NewContentStore(dir)
		fmt.Fprintf(deps.Stdout, "Will save to: %s\n", store.Dir())
		downloader = crawlhttp.NewDownloader(
			crawlhttp.WithTimeout(c.Timeout),
			crawlhttp.WithUserAgent(c.UserAgent),
			crawlhttp.WithContentStore(store),
		)
	}

	if c.Rate > 0 {
		downloader = crawl.NewLimitedDownloader(downloader, crawl.NewDomainLimiter(c.Rate))
	}
	if deps.Verbose {
		downloader = crawlslog.NewLoggingDownloader(downloader, deps.Logger)
	}

	return downloader, cleanup, nil
}

func errorMessages(errs map[string]error) map[string]string {
	msgs := make(map[string]string, len(errs))
	for url, err := range errs {
		msgs[url] = webcrawler.ErrorMessage(err)
	}
	return msgs
}

// printResult writes the downloaded URLs and the failed URLs, each sorted.
func printResult(w io.Writer, downloaded []string, errs map[string]string) {
	downloaded = slices.Sorted(slices.Values(downloaded))
	fmt.Fprintf(w, "Downloaded: %d\n", len(downloaded))
	for _, url := range downloaded {
		fmt.Fprintln(w, url)
	}

	fmt.Fprintf(w, "Errors: %d\n", len(errs))
	for _, url := range slices.Sorted(maps.Keys(errs)) {
		fmt.Fprintf(w, "URL: %s Error: %s\n", url, errs[url])
	}
}
