// Package performance provides the worker pool used to fan symbol scans
// out across goroutines.
package performance

import (
	"sync"
	"sync/atomic"
)

// WorkerPool runs submitted tasks on a fixed set of workers. Submit blocks
// until the task is queued, so no scan is ever silently dropped.
type WorkerPool struct {
	workers   int
	tasks     chan func()
	wg        sync.WaitGroup
	running   atomic.Bool
	tasksDone atomic.Uint64
}

// NewWorkerPool creates a pool with the given number of workers; values
// below 1 become 1.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
	}
}

// Start launches the workers. Starting a running pool is a no-op.
func (p *WorkerPool) Start() {
	if p.running.Swap(true) {
		return
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
		p.tasksDone.Add(1)
	}
}

// Submit queues a task, blocking until a slot is free. Returns false if the
// pool is not running.
func (p *WorkerPool) Submit(task func()) bool {
	if !p.running.Load() {
		return false
	}
	p.tasks <- task
	return true
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (p *WorkerPool) Stop() {
	if !p.running.Swap(false) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// Stats returns pool counters.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Running:   p.running.Load(),
		TasksDone: p.tasksDone.Load(),
	}
}

// PoolStats contains worker pool statistics.
type PoolStats struct {
	Workers   int
	Running   bool
	TasksDone uint64
}
