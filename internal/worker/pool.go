// Package worker provides a bounded worker pool for running scan tasks.
// A scan cycle uses two pools: a wide one for cheap feed and static
// fetches, and a narrow one sized to the browser grid's session capacity.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// MinPoolSize is the minimum allowed pool size.
	MinPoolSize = 1

	// MaxPoolSize is the maximum allowed pool size.
	MaxPoolSize = 100
)

// ErrPoolDraining is returned when tasks are submitted after Wait begins.
var ErrPoolDraining = errors.New("worker pool is draining")

// Task is one unit of scan work.
type Task func(ctx context.Context)

// Pool runs tasks with bounded concurrency.
type Pool struct {
	name string
	sem  chan struct{}
	wg   sync.WaitGroup

	draining atomic.Bool

	// Stats
	active    atomic.Int32
	processed atomic.Int64
}

// NewPool creates a pool that runs at most size tasks at once.
func NewPool(name string, size int) (*Pool, error) {
	if size < MinPoolSize {
		return nil, fmt.Errorf("pool size must be at least %d, got %d", MinPoolSize, size)
	}
	if size > MaxPoolSize {
		return nil, fmt.Errorf("pool size cannot exceed %d, got %d", MaxPoolSize, size)
	}

	return &Pool{
		name: name,
		sem:  make(chan struct{}, size),
	}, nil
}

// Submit schedules a task, blocking while the pool is at capacity. The task
// runs on its own goroutine with the given context.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if p.draining.Load() {
		return ErrPoolDraining
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("submitting to %s pool: %w", p.name, ctx.Err())
	}

	p.wg.Add(1)
	p.active.Add(1)

	go func() {
		defer func() {
			p.active.Add(-1)
			p.processed.Add(1)
			<-p.sem
			p.wg.Done()
		}()

		task(ctx)
	}()

	return nil
}

// Wait blocks until every submitted task finishes. The pool accepts new
// submissions again afterwards.
func (p *Pool) Wait() {
	p.draining.Store(true)
	p.wg.Wait()
	p.draining.Store(false)
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Processed returns the number of tasks completed over the pool's lifetime.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}
