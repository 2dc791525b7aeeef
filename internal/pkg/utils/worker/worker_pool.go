package worker

import "sync/atomic"

// WorkerPool manages a pool of workers to process tasks
type WorkerPool struct {
	workers []*Worker
	next    atomic.Uint64
	stop    chan struct{}
}

// NewWorkerPool creates a new WorkerPool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{
		workers: make([]*Worker, numWorkers),
		stop:    make(chan struct{}),
	}

	for i := 0; i < numWorkers; i++ {
		worker := NewWorker()
		worker.Start()
		pool.workers[i] = worker
	}

	return pool
}

// Stop stops all workers in the pool
func (p *WorkerPool) Stop() {
	for _, worker := range p.workers {
		worker.Stop()
	}
	close(p.stop)
}

// Submit hands a task to the next worker round-robin
func (p *WorkerPool) Submit(task Task) {
	index := p.next.Add(1) - 1
	p.workers[index%uint64(len(p.workers))].Submit(task)
}
