package mock

import (
	"context"

	"github.com/fwojciec/webcrawler"
)

var _ webcrawler.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of webcrawler.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) (webcrawler.Document, error)
}

func (d *Downloader) Download(ctx context.Context, url string) (webcrawler.Document, error) {
	return d.DownloadFn(ctx, url)
}

var _ webcrawler.Document = (*Document)(nil)

// Document is a mock implementation of webcrawler.Document.
type Document struct {
	ExtractLinksFn func() ([]string, error)
}

func (d *Document) ExtractLinks() ([]string, error) {
	return d.ExtractLinksFn()
}

var _ webcrawler.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of webcrawler.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
