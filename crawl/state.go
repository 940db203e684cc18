package crawl

import (
	"maps"
	"sync"

	"github.com/fwojciec/webcrawler"
)

// visitedSet records every URL scheduled during one crawl.
type visitedSet struct {
	seen sync.Map
}

// markIfNew stores url and reports whether it had not been seen before.
func (v *visitedSet) markIfNew(url string) bool {
	_, loaded := v.seen.LoadOrStore(url, struct{}{})
	return !loaded
}

// linkCollector gathers the links discovered by the extraction tasks of one level.
type linkCollector struct {
	mu    sync.Mutex
	links []string
}

func (c *linkCollector) add(links []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, links...)
}

// drain returns the collected links and empties the collector.
func (c *linkCollector) drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	links := c.links
	c.links = nil
	return links
}

// outcome accumulates the downloaded URLs and per-URL errors of one crawl.
type outcome struct {
	mu         sync.Mutex
	downloaded []string
	errors     map[string]error
}

func newOutcome() *outcome {
	return &outcome{errors: make(map[string]error)}
}

func (o *outcome) succeed(url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.downloaded = append(o.downloaded, url)
}

func (o *outcome) fail(url string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors[url] = err
}

// result returns a snapshot that later task completions do not modify.
func (o *outcome) result() *webcrawler.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return &webcrawler.Result{
		Downloaded: append([]string(nil), o.downloaded...),
		Errors:     maps.Clone(o.errors),
	}
}
