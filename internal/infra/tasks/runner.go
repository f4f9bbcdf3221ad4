// Package tasks runs detached best-effort work on a bounded worker pool.
package tasks

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"kidcanvas/pkg/logger"
)

const (
	_defaultWorkers   = 4
	_defaultQueueSize = 256
	_defaultTimeout   = time.Minute
)

type job struct {
	name string
	fn   func(ctx context.Context) error
}

type Runner struct {
	workers int
	timeout time.Duration
	queue   chan job

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup

	logger logger.Interface
}

func New(l logger.Interface, workers, queueSize int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = _defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = _defaultQueueSize
	}
	if timeout <= 0 {
		timeout = _defaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		workers: workers,
		timeout: timeout,
		queue:   make(chan job, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		logger:  l,
	}
}

// Start launches the workers. Tasks submitted earlier wait in the queue.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Submit enqueues fn without blocking. It returns false when the queue is
// full or the runner is shut down; the task is dropped in that case.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("tasks - Submit - runner closed, dropping task=%s", name)
		return false
	}

	select {
	case r.queue <- job{name: name, fn: fn}:
		return true
	default:
		r.logger.Warn("tasks - Submit - queue full, dropping task=%s", name)
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When
// ctx expires first, running tasks are cancelled.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	started := r.started
	r.mu.Unlock()

	if !started {
		r.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return fmt.Errorf("tasks - Shutdown: %w", ctx.Err())
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for j := range r.queue {
		r.run(j)
	}
}

func (r *Runner) run(j job) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(fmt.Errorf("panic: %v", rec), "tasks - run - task=%s\n%s", j.name, debug.Stack())
		}
	}()

	start := time.Now()
	if err := j.fn(ctx); err != nil {
		r.logger.Error(err, "tasks - run - task=%s", j.name)
		return
	}
	r.logger.Debug("tasks - run - task=%s done in %s", j.name, time.Since(start))
}
