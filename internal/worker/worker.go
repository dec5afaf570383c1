// Package worker provides a concurrent task execution system with a configurable number of workers.
//
// The Pool limits the number of goroutines running simultaneously through a semaphore and
// aggregates every task error into a single MultiError. Tasks receive the context they were
// submitted with; once that context is done, tasks that have not started yet are skipped.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gruntwork-io/assetflow/internal/errors"
)

// Task represents a unit of work that can be executed
type Task func(ctx context.Context) error

// Pool manages concurrent task execution with a configurable number of workers
type Pool struct {
	semaphore   chan struct{}
	allErrors   *errors.MultiError
	wg          sync.WaitGroup
	maxWorkers  int
	allErrorsMu sync.RWMutex
	skipped     atomic.Int64
	isStopping  atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified maximum number of concurrent workers
func NewWorkerPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &Pool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		allErrors:  &errors.MultiError{},
	}
}

// MaxWorkers returns the concurrency limit.
func (wp *Pool) MaxWorkers() int {
	return wp.maxWorkers
}

// appendError safely appends an error to allErrors
func (wp *Pool) appendError(err error) {
	if err == nil {
		return
	}

	wp.allErrorsMu.Lock()
	wp.allErrors = wp.allErrors.Append(err)
	wp.allErrorsMu.Unlock()
}

// Submit adds a new task and starts a goroutine to execute it when a worker is available.
func (wp *Pool) Submit(ctx context.Context, task Task) {
	// Don't submit new tasks if the pool is stopping
	if wp.isStopping.Load() {
		return
	}

	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()

		select {
		case wp.semaphore <- struct{}{}:
		case <-ctx.Done():
			wp.skipped.Add(1)
			return
		}

		defer func() { <-wp.semaphore }()

		if ctx.Err() != nil {
			wp.skipped.Add(1)
			return
		}

		if err := task(ctx); err != nil {
			wp.appendError(err)
		}
	}()
}

// Wait blocks until all tasks are completed and returns any errors
func (wp *Pool) Wait() error {
	wp.wg.Wait()

	wp.allErrorsMu.RLock()
	defer wp.allErrorsMu.RUnlock()

	return wp.allErrors.ErrorOrNil()
}

// Skipped returns how many tasks never ran because their context was done.
func (wp *Pool) Skipped() int {
	return int(wp.skipped.Load())
}

// GracefulStop prevents new submissions and waits for the running tasks to complete.
func (wp *Pool) GracefulStop() error {
	wp.isStopping.Store(true)

	return wp.Wait()
}

// IsStopping returns whether the pool is in the process of stopping
func (wp *Pool) IsStopping() bool {
	return wp.isStopping.Load()
}
