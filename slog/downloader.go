// Package slog provides logging decorators for webcrawler services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawler"
)

// Ensure LoggingDownloader implements webcrawler.Downloader.
var _ webcrawler.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with logging of every download and
// of the link extraction of the documents it returns.
type LoggingDownloader struct {
	next   webcrawler.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next webcrawler.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download logs the URL being downloaded and delegates to the wrapped downloader.
func (d *LoggingDownloader) Download(ctx context.Context, url string) (doc webcrawler.Document, err error) {
	defer func(begin time.Time) {
		d.logger.Info("download",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	doc, err = d.next.Download(ctx, url)
	if err != nil || doc == nil {
		return doc, err
	}
	return &loggingDocument{next: doc, url: url, logger: d.logger}, nil
}

type loggingDocument struct {
	next   webcrawler.Document
	url    string
	logger *slog.Logger
}

func (d *loggingDocument) ExtractLinks() (links []string, err error) {
	defer func(begin time.Time) {
		d.logger.Debug("extract links",
			"url", d.url,
			"links", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.ExtractLinks()
}
