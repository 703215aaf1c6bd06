package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/worker"
)

func TestNewPoolValidation(t *testing.T) {
	t.Parallel()

	_, err := worker.NewPool("scan", 0)
	require.Error(t, err)

	_, err = worker.NewPool("scan", worker.MaxPoolSize+1)
	require.Error(t, err)

	p, err := worker.NewPool("scan", 4)
	require.NoError(t, err)
	assert.Zero(t, p.Active())
}

func TestPoolRunsAllTasks(t *testing.T) {
	t.Parallel()

	p, err := worker.NewPool("scan", 3)
	require.NoError(t, err)

	var count atomic.Int64
	for range 10 {
		require.NoError(t, p.Submit(context.Background(), func(context.Context) {
			count.Add(1)
		}))
	}
	p.Wait()

	assert.Equal(t, int64(10), count.Load())
	assert.Equal(t, int64(10), p.Processed())
	assert.Zero(t, p.Active())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const size = 2

	p, err := worker.NewPool("scan", size)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		peak int
		cur  int
	)

	for range 8 {
		require.NoError(t, p.Submit(context.Background(), func(context.Context) {
			mu.Lock()
			cur++
			if cur > peak {
				peak = cur
			}
			mu.Unlock()

			mu.Lock()
			cur--
			mu.Unlock()
		}))
	}
	p.Wait()

	assert.LessOrEqual(t, peak, size)
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	t.Parallel()

	p, err := worker.NewPool("scan", 1)
	require.NoError(t, err)

	block := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func(context.Context) {
		<-block
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Submit(ctx, func(context.Context) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(block)
	p.Wait()
}
