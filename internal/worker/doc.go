// Package worker provides a fixed goroutine pool for connection handling and
// a detached executor for delayed background tasks.
//
// The Pool starts its workers as soon as it is created. Workers share one
// unbounded FIFO queue; taking an item off the queue is serialized, running
// it is not. A job that panics is recovered and logged, and the worker moves
// on to the next job.
//
// # Basic Usage
//
//	pool := worker.NewPool(4) // 4 workers, already running
//	defer pool.Stop()
//
//	pool.Submit(func() {
//	    // handle one connection
//	})
//
// NewPool panics when size is not positive.
//
// # Graceful Shutdown
//
// Stop enqueues one poison token per worker and waits until every worker has
// exited. Jobs queued before Stop are executed first; jobs that race in
// behind the poison tokens may be dropped. Submit never blocks and returns
// false once the pool is stopping.
//
// # Detached Tasks
//
// Executor runs delayed one-shot tasks on their own goroutines so that
// long waits never occupy a pool worker:
//
//	exec := worker.NewExecutor()
//	exec.Schedule(4*time.Second, func() { ... })
package worker
