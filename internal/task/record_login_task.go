package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/platform/logger"
)

// TaskTypeRecordLogin identifies tasks that stamp an account's last login.
const TaskTypeRecordLogin = "record_login"

// LoginRecorder is the slice of the account service a RecordLoginTask needs.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, accountID uuid.UUID) error
}

// RecordLoginTask records a successful authentication outside the request path.
type RecordLoginTask struct {
	id        uuid.UUID
	accountID uuid.UUID
	recorder  LoginRecorder
	log       *slog.Logger
}

// NewRecordLoginTask creates a task that calls recorder.RecordLogin for accountID.
func NewRecordLoginTask(recorder LoginRecorder, accountID uuid.UUID) *RecordLoginTask {
	return &RecordLoginTask{
		id:        uuid.New(),
		accountID: accountID,
		recorder:  recorder,
	}
}

// ID returns the task's unique identifier
func (t *RecordLoginTask) ID() uuid.UUID { return t.id }

// Type returns TaskTypeRecordLogin
func (t *RecordLoginTask) Type() string { return TaskTypeRecordLogin }

// AccountID returns the account whose login is recorded.
func (t *RecordLoginTask) AccountID() uuid.UUID { return t.accountID }

// WithLogger binds log, typically the request-scoped logger carrying the
// trace ID, to the task. Execute runs the recorder under it.
func (t *RecordLoginTask) WithLogger(log *slog.Logger) *RecordLoginTask {
	t.log = log
	return t
}

// Execute records the login.
func (t *RecordLoginTask) Execute(ctx context.Context) error {
	if t.log != nil {
		ctx = logger.WithLogger(ctx, t.log)
	}
	if err := t.recorder.RecordLogin(ctx, t.accountID); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "failed to record login",
			slog.String("task_id", t.id.String()),
			slog.String("account_id", t.accountID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("record login for account %s: %w", t.accountID, err)
	}
	return nil
}

var _ Task = (*RecordLoginTask)(nil)
