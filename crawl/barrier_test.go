package crawl

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/stretchr/testify/assert"
)

func TestLevelBarrier(t *testing.T) {
	t.Parallel()

	t.Run("returns at once when nothing was registered", func(t *testing.T) {
		t.Parallel()

		b := newLevelBarrier()

		assert.NoError(t, b.wait(context.Background(), nil))
	})

	t.Run("waits for tasks registered by other tasks", func(t *testing.T) {
		t.Parallel()

		b := newLevelBarrier()
		b.register()
		go func() {
			time.Sleep(5 * time.Millisecond)
			b.register()
			b.arrive()
			time.Sleep(5 * time.Millisecond)
			b.arrive()
		}()

		assert.NoError(t, b.wait(context.Background(), nil))
		b.mu.Lock()
		defer b.mu.Unlock()
		assert.Zero(t, b.pending)
	})

	t.Run("stops waiting when context is done", func(t *testing.T) {
		t.Parallel()

		b := newLevelBarrier()
		b.register()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, b.wait(ctx, nil), context.Canceled)
	})

	t.Run("stops waiting when stopped", func(t *testing.T) {
		t.Parallel()

		b := newLevelBarrier()
		b.register()
		stop := make(chan struct{})
		close(stop)

		err := b.wait(context.Background(), stop)

		assert.Equal(t, webcrawler.ECLOSED, webcrawler.ErrorCode(err))
	})
}
