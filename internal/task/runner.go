package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/account-service/internal/platform/logger"
)

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds each task execution. Zero disables the bound.
	TaskTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 10 * time.Second,
	}
}

// Runner couples a Queue with a WorkerPool.
type Runner struct {
	queue  *Queue
	pool   *WorkerPool
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewRunner creates a Runner. Call Start before submitting work.
func NewRunner(config RunnerConfig, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "task_runner"))

	queue := NewQueue(config.QueueSize, log)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, log)

	return &Runner{queue: queue, pool: pool, logger: log}
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start launches the workers. Calling Start more than once has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true
	r.pool.Start()
}

// Submit queues a task without blocking.
// Returns ErrQueueFull or ErrQueueClosed when the task cannot be accepted.
func (r *Runner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		logger.FromContextOrDefault(ctx, r.logger).Warn("task rejected",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Pending reports how many submitted tasks are waiting for a worker.
func (r *Runner) Pending() int {
	return r.queue.Len()
}

// Stop closes the queue and waits for workers to drain it. If ctx ends
// first, running tasks are cancelled and ctx.Err() is returned once the
// workers have exited.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.queue.Close()
	if !started {
		// Nobody will ever read the queue; abandon whatever was submitted.
		r.pool.Cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.pool.Cancel()
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.pool.Cancel()
		<-done
		r.logger.Warn("task runner stop deadline exceeded, pending tasks were cancelled")
		return ctx.Err()
	}
}

var _ Submitter = (*Runner)(nil)
