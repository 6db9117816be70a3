package task

import (
	"context"

	"github.com/google/uuid"
)

// Task is one unit of background work.
type Task interface {
	ID() uuid.UUID
	// Type names the kind of work for logs and metrics.
	Type() string
	Execute(ctx context.Context) error
}

// Submitter accepts tasks for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, t Task) error
}

// Source hands queued tasks to workers. The channel is closed once the
// source stops accepting work and has been drained.
type Source interface {
	Tasks() <-chan Task
}

// funcTask adapts a plain function to Task.
type funcTask struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
}

// NewFunc wraps fn as a Task of the given type.
func NewFunc(taskType string, fn func(ctx context.Context) error) Task {
	return &funcTask{id: uuid.New(), taskType: taskType, fn: fn}
}

func (t *funcTask) ID() uuid.UUID { return t.id }
func (t *funcTask) Type() string  { return t.taskType }

func (t *funcTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return nil
	}
	return t.fn(ctx)
}
