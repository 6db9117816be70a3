package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Queue is a bounded FIFO buffer in front of the worker pool. Enqueue never
// blocks: a full queue rejects the task instead.
type Queue struct {
	ch  chan Task
	log *slog.Logger

	mu     sync.RWMutex // held for reading while sending on ch
	closed bool
}

// NewQueue returns a queue with room for capacity tasks. Capacities below one
// are raised to one.
func NewQueue(capacity int, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{ch: make(chan Task, max(capacity, 1)), log: log}
}

func (q *Queue) Enqueue(t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if !q.offer(t) {
		return fmt.Errorf("%w: %d pending", ErrQueueFull, cap(q.ch))
	}
	q.log.Debug("task enqueued",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("pending", len(q.ch)))
	return nil
}

func (q *Queue) offer(t Task) bool {
	select {
	case q.ch <- t:
		return true
	default:
		return false
	}
}

// Close stops intake. Tasks already buffered can still be received.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.log.Info("task queue closed", slog.Int("pending", len(q.ch)))
}

func (q *Queue) Len() int { return len(q.ch) }

func (q *Queue) Cap() int { return cap(q.ch) }

func (q *Queue) Tasks() <-chan Task { return q.ch }

var _ Source = (*Queue)(nil)
