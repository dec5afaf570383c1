package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllTasksCompleteWithoutErrors(t *testing.T) {
	t.Parallel()

	wp := worker.NewWorkerPool(5)
	ctx := context.Background()

	var counter int32

	for range 10 {
		wp.Submit(ctx, func(context.Context) error {
			atomic.AddInt32(&counter, 1)
			return nil
		})
	}

	require.NoError(t, wp.Wait())
	assert.Equal(t, int32(10), atomic.LoadInt32(&counter))
}

func TestErrorsAreAggregated(t *testing.T) {
	t.Parallel()

	wp := worker.NewWorkerPool(3)
	ctx := context.Background()

	for i := range 6 {
		wp.Submit(ctx, func(context.Context) error {
			if i%2 == 0 {
				return errors.Errorf("task %d failed", i)
			}

			return nil
		})
	}

	err := wp.Wait()
	require.Error(t, err)

	var multiErr *errors.MultiError
	require.True(t, errors.As(err, &multiErr))
	assert.Len(t, multiErr.Unwrap(), 3)
}

func TestConcurrencyIsLimited(t *testing.T) {
	t.Parallel()

	const maxWorkers = 2

	wp := worker.NewWorkerPool(maxWorkers)
	ctx := context.Background()

	var running, peak int32

	for range 8 {
		wp.Submit(ctx, func(context.Context) error {
			current := atomic.AddInt32(&running, 1)

			for {
				old := atomic.LoadInt32(&peak)
				if current <= old || atomic.CompareAndSwapInt32(&peak, old, current) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)

			return nil
		})
	}

	require.NoError(t, wp.Wait())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(maxWorkers))
}

func TestCanceledContextSkipsPendingTasks(t *testing.T) {
	t.Parallel()

	wp := worker.NewWorkerPool(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var counter int32

	for range 4 {
		wp.Submit(ctx, func(context.Context) error {
			atomic.AddInt32(&counter, 1)
			return nil
		})
	}

	require.NoError(t, wp.Wait())
	assert.Equal(t, int32(0), atomic.LoadInt32(&counter))
	assert.Equal(t, 4, wp.Skipped())
}

func TestGracefulStopRejectsNewTasks(t *testing.T) {
	t.Parallel()

	wp := worker.NewWorkerPool(2)
	ctx := context.Background()

	var counter int32

	wp.Submit(ctx, func(context.Context) error {
		atomic.AddInt32(&counter, 1)
		return nil
	})

	require.NoError(t, wp.GracefulStop())
	assert.True(t, wp.IsStopping())

	wp.Submit(ctx, func(context.Context) error {
		atomic.AddInt32(&counter, 1)
		return nil
	})

	require.NoError(t, wp.Wait())
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter))
}
