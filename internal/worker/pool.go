package worker

import "sync"

// Pool runs submitted tasks on a fixed number of goroutines. Submit blocks
// once the queue is full, which is the back-pressure bound on how many
// extractions can pile up. Wait lets callers (and tests) observe completion.
type Pool struct {
	tasks   chan func()
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	p := &Pool{tasks: make(chan func(), queueDepth)}
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.workers.Done()
			for task := range p.tasks {
				task()
				p.pending.Done()
			}
		}()
	}
	return p
}

// Submit enqueues a task. Returns false if the pool is already closed. The
// send happens under the lock so a blocked Submit can never race Close into
// sending on a closed channel; producers serialize, workers drain freely.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.pending.Add(1)
	p.tasks <- task
	return true
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Close stops accepting tasks, drains the queue, and waits for the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.workers.Wait()
}
