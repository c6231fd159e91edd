package performance

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	var counter atomic.Int64
	var wg sync.WaitGroup

	const tasks = 100
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
		if !ok {
			t.Fatal("submit failed on a running pool")
		}
	}
	wg.Wait()

	if got := counter.Load(); got != tasks {
		t.Errorf("ran %d tasks, want %d", got, tasks)
	}
}

func TestWorkerPool_SubmitBlocksInsteadOfDropping(t *testing.T) {
	// One slow worker and a small queue: every submit must still land.
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Stop()

	var counter atomic.Int64
	var wg sync.WaitGroup

	const tasks = 20
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			counter.Add(1)
		})
	}
	wg.Wait()

	if got := counter.Load(); got != tasks {
		t.Errorf("ran %d tasks, want %d", got, tasks)
	}
}

func TestWorkerPool_SubmitAfterStopFails(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()

	if pool.Submit(func() {}) {
		t.Error("submit must fail on a stopped pool")
	}
}

func TestWorkerPool_StartAndStopAreIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start()
	pool.Stop()
	pool.Stop()
}

func TestWorkerPool_MinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.Stats().Workers != 1 {
		t.Errorf("workers = %d, want 1", pool.Stats().Workers)
	}
}

func TestWorkerPool_StatsCountCompletedTasks(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Submit(func() { wg.Done() })
	}
	wg.Wait()
	pool.Stop()

	stats := pool.Stats()
	if stats.TasksDone != 10 {
		t.Errorf("tasks done = %d, want 10", stats.TasksDone)
	}
	if stats.Running {
		t.Error("pool must report stopped")
	}
}
