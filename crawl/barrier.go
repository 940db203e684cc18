package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webcrawler"
)

// levelBarrier lets the crawl driver wait until every task of one traversal
// level has finished. It starts with a registration held by the driver, so
// the count cannot return to zero while tasks are still being dispatched.
//
// A barrier whose tasks are dropped by a stopped pool never completes. Its
// waiter is released by ctx or stop and nothing else blocks on it.
type levelBarrier struct {
	mu      sync.Mutex
	pending int
	done    chan struct{}
}

func newLevelBarrier() *levelBarrier {
	return &levelBarrier{
		pending: 1,
		done:    make(chan struct{}),
	}
}

// register adds one task. It must be called before the task is submitted,
// by the driver or by a task that has not yet arrived.
func (b *levelBarrier) register() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending++
}

// arrive marks one registered task as finished.
func (b *levelBarrier) arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending--
	if b.pending == 0 {
		close(b.done)
	}
}

// wait drops the driver's registration and blocks until all registered
// tasks have arrived, ctx is done, or stop is closed.
func (b *levelBarrier) wait(ctx context.Context, stop <-chan struct{}) error {
	b.arrive()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return webcrawler.Errorf(webcrawler.ECLOSED, "crawler closed")
	}
}
