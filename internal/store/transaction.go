package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/account-service/internal/platform/logger"
)

// TxFn is the unit of work passed to RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction opens a transaction on db and hands it to fn.
// A nil result commits; an error or panic rolls back. Failures to begin or
// commit are reported as ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) (err error) {
	log := logger.FromContext(ctx).With(slog.String("component", "tx"))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed", slog.String("error", rbErr.Error()), slog.Any("panic", p))
			if p == nil && err != nil {
				err = fmt.Errorf("rollback: %v: %w", rbErr, err)
			}
		}
		if p != nil {
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		log.Debug("rolling back", slog.String("error", err.Error()))
		return err
	}

	committed = true
	if err := tx.Commit(); err != nil {
		log.Error("commit failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}
