package crawl

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostGate(t *testing.T) {
	t.Parallel()

	t.Run("admits queued tasks of a host in FIFO order", func(t *testing.T) {
		t.Parallel()

		pool := NewPool("test", 4, nil)
		defer func() { _ = pool.Shutdown(context.Background()) }()
		gate := newHostGate(1, pool)

		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup
		block := make(chan struct{})

		for i := range 6 {
			wg.Add(1)
			gate.acquire("a.test", func(context.Context) {
				defer wg.Done()
				defer gate.release("a.test")
				if i == 0 {
					<-block
				}
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}
		close(block)
		wg.Wait()

		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
	})

	t.Run("queues tasks over the limit", func(t *testing.T) {
		t.Parallel()

		pool := NewPool("test", 1, nil)
		defer func() { _ = pool.Shutdown(context.Background()) }()
		gate := newHostGate(1, pool)

		block := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(3)
		gate.acquire("slow.test", func(context.Context) {
			defer wg.Done()
			defer gate.release("slow.test")
			<-block
		})
		gate.acquire("slow.test", func(context.Context) {
			defer wg.Done()
			defer gate.release("slow.test")
		})

		s := gate.slots("slow.test")
		s.mu.Lock()
		queued := len(s.pending)
		s.mu.Unlock()
		require.Equal(t, 1, queued)

		close(block)
		gate.acquire("fast.test", func(context.Context) {
			defer wg.Done()
			defer gate.release("fast.test")
		})
		wg.Wait()
	})

	t.Run("shares one slot set per host under concurrent first use", func(t *testing.T) {
		t.Parallel()

		gate := newHostGate(1, nil)

		const callers = 32
		got := make([]*hostSlots, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[i] = gate.slots("a.test")
			}()
		}
		wg.Wait()

		for _, s := range got {
			assert.Same(t, got[0], s)
		}
		assert.NotSame(t, got[0], gate.slots("b.test"))
	})

	t.Run("returns permit when nothing is queued", func(t *testing.T) {
		t.Parallel()

		pool := NewPool("test", 2, nil)
		defer func() { _ = pool.Shutdown(context.Background()) }()
		gate := newHostGate(2, pool)

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			gate.acquire("a.test", func(context.Context) {
				defer wg.Done()
				defer gate.release("a.test")
			})
		}
		wg.Wait()

		s := gate.slots("a.test")
		s.mu.Lock()
		defer s.mu.Unlock()
		assert.Equal(t, 2, s.available)
		assert.Empty(t, s.pending)
	})
}
