package crawl

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Task is a unit of work run by a Pool. The context is canceled when the
// pool is forced to stop.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed number of goroutines in submission order.
// Submit never blocks: tasks wait in an unbounded queue until a worker is free.
// Pool is safe for concurrent use.
type Pool struct {
	name   string
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool starts a pool with size workers. A non-positive size starts one worker.
func NewPool(name string, size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   name,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for range size {
		go p.work()
	}
	return p
}

// Submit queues task for execution. It reports false, without running the
// task, if the pool has been shut down.
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	return true
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// finish. If ctx is done first, queued tasks are dropped, the context of
// running tasks is canceled, and ctx.Err() is returned without waiting further.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
	}

	p.mu.Lock()
	dropped := len(p.queue)
	p.queue = nil
	p.mu.Unlock()
	p.cancel()

	p.logger.Warn("pool forced to stop", "pool", p.name, "dropped", dropped)
	return ctx.Err()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(task)
	}
}

// run executes task, keeping the worker alive if the task panics.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked", "pool", p.name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task(p.ctx)
}
