package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SubmitAndStopDrains(t *testing.T) {
	runner := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 50}, discardLogger())
	runner.Start()

	var executed atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, runner.Submit(context.Background(), testTask(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			executed.Add(1)
			return nil
		})))
	}

	require.NoError(t, runner.Stop(context.Background()))
	assert.Equal(t, int32(20), executed.Load())

	err := runner.Submit(context.Background(), testTask(nil))
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Stopping twice is harmless
	assert.NoError(t, runner.Stop(context.Background()))
}

func TestRunner_SubmitNeverBlocks(t *testing.T) {
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, discardLogger())
	// Not started: nothing drains the queue

	require.NoError(t, runner.Submit(context.Background(), testTask(nil)))
	assert.Equal(t, 1, runner.Pending())

	done := make(chan error, 1)
	go func() { done <- runner.Submit(context.Background(), testTask(nil)) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	assert.NoError(t, runner.Stop(context.Background()))
}

func TestRunner_StopDeadlineCancelsTasks(t *testing.T) {
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 5}, discardLogger())
	runner.Start()

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, runner.Submit(context.Background(), testTask(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runner.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cancelled.Load())
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (f *fakeRecorder) RecordLogin(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	return f.err
}

func TestRecordLoginTask(t *testing.T) {
	accountID := uuid.New()
	recorder := &fakeRecorder{}

	task := NewRecordLoginTask(recorder, accountID)
	assert.Equal(t, TaskTypeRecordLogin, task.Type())
	assert.Equal(t, accountID, task.AccountID())
	assert.NotEqual(t, uuid.Nil, task.ID())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, []uuid.UUID{accountID}, recorder.calls)

	recorder.err = errors.New("store down")
	err := task.Execute(context.Background())
	assert.ErrorIs(t, err, recorder.err)
	assert.Contains(t, err.Error(), accountID.String())
}

type recorderFunc func(ctx context.Context, id uuid.UUID) error

func (f recorderFunc) RecordLogin(ctx context.Context, id uuid.UUID) error { return f(ctx, id) }

func TestRecordLoginTask_RunsUnderBoundLogger(t *testing.T) {
	log, buf := logger.NewCapture()
	requestLog := log.With("trace_id", "trace-42")

	var seen *slog.Logger
	recorder := recorderFunc(func(ctx context.Context, id uuid.UUID) error {
		seen = logger.FromContext(ctx)
		return errors.New("store down")
	})

	task := NewRecordLoginTask(recorder, uuid.New()).WithLogger(requestLog)
	require.Error(t, task.Execute(context.Background()))
	assert.Same(t, requestLog, seen)

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed to record login", entries[0]["msg"])
	assert.Equal(t, "trace-42", entries[0]["trace_id"])
	assert.Equal(t, task.AccountID().String(), entries[0]["account_id"])
}

func TestRunner_RecordLoginFailureIsReportedNotPropagated(t *testing.T) {
	runner := NewRunner(DefaultRunnerConfig(), discardLogger())

	var failed atomic.Int32
	runner.SetErrorHandler(func(task Task, err error) { failed.Add(1) })
	runner.Start()

	recorder := &fakeRecorder{err: errors.New("store down")}
	require.NoError(t, runner.Submit(context.Background(), NewRecordLoginTask(recorder, uuid.New())))
	require.NoError(t, runner.Stop(context.Background()))

	assert.Equal(t, int32(1), failed.Load())
}
