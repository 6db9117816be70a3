package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/account-service/internal/store"
)

// Unique constraints created by the accounts migration.
const (
	handleUniqueConstraint = "accounts_handle_key"
	emailUniqueConstraint  = "accounts_email_lower_key"
)

// MapError translates driver errors into store sentinels, keeping the
// original error in the chain. Errors it does not recognise pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %v", uniqueSentinel(pgErr.ConstraintName), pgErr)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: check %s: %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: column %s is required: %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	default:
		return err
	}
}

func uniqueSentinel(constraint string) error {
	switch {
	case constraint == handleUniqueConstraint, strings.Contains(constraint, "handle"):
		return store.ErrHandleExists
	case constraint == emailUniqueConstraint, strings.Contains(constraint, "email"):
		return store.ErrEmailExists
	default:
		return store.ErrDuplicate
	}
}

// CheckRowsAffected returns store.ErrAccountNotFound when result touched no rows.
func CheckRowsAffected(result sql.Result) error {
	if result == nil {
		return errors.New("nil sql.Result")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrAccountNotFound
	}
	return nil
}
