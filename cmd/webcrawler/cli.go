package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawler"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Verbose bool
	Runs    webcrawler.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"WEBCRAWLER_DB" help:"Crawl history database (default: ~/.webcrawler/history.db)"`
	Verbose bool   `short:"v" help:"Log every download and link extraction to stderr"`

	Crawl CrawlCmd `cmd:"" help:"Crawl pages reachable from a URL"`
	Runs  RunsCmd  `cmd:"" help:"List recorded crawls or show one of them"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string `arg:"" help:"Root URL to start from"`
	Depth       int    `arg:"" optional:"" default:"1" help:"Number of levels to download; 1 fetches only the root"`
	Downloaders int    `arg:"" optional:"" default:"1" help:"Concurrent downloads"`
	Extractors  int    `arg:"" optional:"" default:"1" help:"Concurrent link extractions"`
	PerHost     int    `arg:"" optional:"" default:"1" name:"per-host" help:"Concurrent downloads per host"`

	Timeout   time.Duration `short:"t" default:"10s" help:"Per-page download timeout"`
	Rate      float64       `short:"r" default:"0" help:"Requests per second per host (0 disables the limit)"`
	UserAgent string        `name:"user-agent" default:"webcrawler/1.0" help:"User-Agent header for HTTP requests"`
	CacheDir  string        `name:"cache-dir" help:"Directory for downloaded pages (default: new temporary directory)"`
	Render    bool          `help:"Render pages in headless Chrome (requires Chrome or Chromium)"`
	Record    bool          `help:"Store the result in the crawl history"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	ID    string `arg:"" optional:"" help:"Show the downloaded pages and errors of this run"`
	URL   string `name:"url" help:"Only list runs of this root URL"`
	Limit int    `short:"n" default:"20" help:"Maximum number of runs to list"`
}
