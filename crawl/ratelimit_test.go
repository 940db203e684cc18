package crawl_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/crawl"
	"github.com/fwojciec/webcrawler/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements webcrawler.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ webcrawler.DomainLimiter = crawl.NewDomainLimiter(1)
	})

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10) // 10 req/sec

		start := time.Now()
		err := limiter.Wait(context.Background(), "a.test")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("rate limits requests to same domain", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10) // 10 req/sec = 100ms between requests

		// First request is immediate
		err := limiter.Wait(context.Background(), "a.test")
		require.NoError(t, err)

		// Second request should wait
		start := time.Now()
		err = limiter.Wait(context.Background(), "a.test")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different domains have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10) // 10 req/sec

		// First request to domain A
		err := limiter.Wait(context.Background(), "a.test")
		require.NoError(t, err)

		// First request to domain B should be immediate
		start := time.Now()
		err = limiter.Wait(context.Background(), "b.test")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "different domain should not wait")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(1) // 1 req/sec = 1000ms between requests

		// First request exhausts the token
		err := limiter.Wait(context.Background(), "a.test")
		require.NoError(t, err)

		// Second request with short timeout
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = limiter.Wait(ctx, "a.test")
		assert.Error(t, err, "should fail when context times out")
	})

	t.Run("concurrent requests are serialized per domain", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(100) // 100 req/sec = 10ms between requests

		var wg sync.WaitGroup
		var completed atomic.Int32

		// Launch 5 concurrent requests to same domain
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := limiter.Wait(context.Background(), "a.test")
				if err == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load(), "all requests should complete")
	})
}

func TestLimitedDownloader(t *testing.T) {
	t.Parallel()

	t.Run("waits on the URL host before downloading", func(t *testing.T) {
		t.Parallel()

		var calls []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				calls = append(calls, "wait "+domain)
				return nil
			},
		}
		doc := &mock.Document{}
		next := &mock.Downloader{
			DownloadFn: func(ctx context.Context, url string) (webcrawler.Document, error) {
				calls = append(calls, "download "+url)
				return doc, nil
			},
		}

		got, err := crawl.NewLimitedDownloader(next, limiter).Download(context.Background(), "https://A.test:8443/page")

		require.NoError(t, err)
		assert.Same(t, doc, got)
		assert.Equal(t, []string{"wait a.test", "download https://A.test:8443/page"}, calls)
	})

	t.Run("does not download when the wait fails", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				return context.Canceled
			},
		}
		next := &mock.Downloader{
			DownloadFn: func(ctx context.Context, url string) (webcrawler.Document, error) {
				t.Error("download should not be called")
				return nil, nil
			},
		}

		_, err := crawl.NewLimitedDownloader(next, limiter).Download(context.Background(), "https://a.test/")

		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{}
		next := &mock.Downloader{}

		_, err := crawl.NewLimitedDownloader(next, limiter).Download(context.Background(), "not-absolute")

		assert.Equal(t, webcrawler.EMALFORMED, webcrawler.ErrorCode(err))
	})
}
