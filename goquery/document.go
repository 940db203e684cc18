// Package goquery extracts links from HTML pages using goquery.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webcrawler"
)

var _ webcrawler.Document = (*Document)(nil)

// Document is a fetched HTML page. It is parsed lazily, when its links are requested.
type Document struct {
	url  string
	body []byte
}

// NewDocument returns a Document for body fetched from url. url is the base
// against which relative links are resolved, so it should be the final URL
// after redirects.
func NewDocument(url string, body []byte) *Document {
	return &Document{url: url, body: body}
}

// ExtractLinks returns the absolute http(s) URLs of the page's a and area
// elements, in document order and without duplicates. Relative links are
// resolved against the page's <base href> if it has one. Fragments are removed.
func (d *Document) ExtractLinks() ([]string, error) {
	base, err := url.Parse(d.url)
	if err != nil {
		return nil, webcrawler.Errorf(webcrawler.EINVALID, "invalid document URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.body))
	if err != nil {
		return nil, webcrawler.Errorf(webcrawler.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := resolveLink(base, href)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links, nil
}

// resolveLink returns href as an absolute http(s) URL without fragment, or
// an empty string if href does not point to another crawlable resource.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a link uses a scheme that never leads to a web page.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
