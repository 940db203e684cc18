package crawl

import "sync"

// hostGate bounds the number of concurrent downloads per host. A task over
// the limit waits in its host's FIFO queue without holding a worker and is
// handed the permit of the next task that releases. Hosts never share a lock.
type hostGate struct {
	perHost int
	pool    *Pool
	hosts   sync.Map // host -> *hostSlots
}

// hostSlots is the admission state of a single host. The permit count and
// the queue change together under mu so that a release cannot miss a task
// that is being queued concurrently.
type hostSlots struct {
	mu        sync.Mutex
	available int
	pending   []Task
}

func newHostGate(perHost int, pool *Pool) *hostGate {
	return &hostGate{
		perHost: perHost,
		pool:    pool,
	}
}

// slots returns the state for host, creating it on first use.
func (g *hostGate) slots(host string) *hostSlots {
	if s, ok := g.hosts.Load(host); ok {
		return s.(*hostSlots)
	}
	s, _ := g.hosts.LoadOrStore(host, &hostSlots{available: g.perHost})
	return s.(*hostSlots)
}

// acquire submits task to the pool if host has a free permit and queues it otherwise.
func (g *hostGate) acquire(host string, task Task) {
	s := g.slots(host)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.available == 0 {
		s.pending = append(s.pending, task)
		return
	}
	s.available--
	if !g.pool.Submit(task) {
		s.available++
	}
}

// release hands host's permit to the oldest queued task, or returns it to
// the host if nothing is waiting.
func (g *hostGate) release(host string) {
	s := g.slots(host)

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		if g.pool.Submit(next) {
			return
		}
	}
	s.available++
}
