package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/phrazzld/account-service/internal/store"
)

const accountColumns = `id, handle, email, credential_hash, first_name, last_name, phone_number,
	role, is_active, is_email_verified, created_at, updated_at, last_login`

// creationOrder is the natural listing order.
const creationOrder = "created_at ASC, id ASC"

// sortColumns whitelists the columns accepted in ORDER BY.
var sortColumns = map[store.SortField]string{
	store.SortByCreatedAt: "created_at",
	store.SortByUpdatedAt: "updated_at",
	store.SortByHandle:    "handle",
	store.SortByEmail:     "email",
	store.SortByLastLogin: "last_login",
}

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db     store.DBTX
	inTx   bool
	logger *slog.Logger
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the AccountStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// RunInTx requires db to be a *sql.DB.
// If logger is nil, a default logger will be used.
func NewPostgresAccountStore(db store.DBTX, logger *slog.Logger) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	_, inTx := db.(*sql.Tx)
	return &PostgresAccountStore{
		db:     db,
		inTx:   inTx,
		logger: logger.With(slog.String("component", "account_store")),
	}
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// WithTx returns a store bound to tx. Row lookups by ID made through it lock
// the row until the transaction ends.
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) *PostgresAccountStore {
	return &PostgresAccountStore{
		db:     tx,
		inTx:   true,
		logger: s.logger,
	}
}

// RunInTx implements store.AccountStore.RunInTx.
// Calls made on an already transaction-bound store join the open transaction.
func (s *PostgresAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	if s.inTx {
		return fn(ctx, s)
	}
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fmt.Errorf("%w: store is not backed by *sql.DB", store.ErrTransactionFailed)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var role string
	var lastLogin sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.Handle,
		&a.Email,
		&a.CredentialHash,
		&a.FirstName,
		&a.LastName,
		&a.PhoneNumber,
		&role,
		&a.IsActive,
		&a.IsEmailVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}

	a.Role = domain.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		a.LastLogin = &t
	}
	return &a, nil
}

// now returns the current time at the precision Postgres stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Insert implements store.AccountStore.Insert.
func (s *PostgresAccountStore) Insert(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		log.Warn("account validation failed during insert",
			slog.String("error", err.Error()))
		return err
	}

	ts := now()
	query := `
		INSERT INTO accounts (handle, email, credential_hash, first_name, last_name, phone_number,
			role, is_active, is_email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`
	var id uuid.UUID
	err := s.db.QueryRowContext(
		ctx,
		query,
		account.Handle,
		account.Email,
		account.CredentialHash,
		account.FirstName,
		account.LastName,
		account.PhoneNumber,
		string(account.Role),
		account.IsActive,
		account.IsEmailVerified,
		ts,
	).Scan(&id)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("uniqueness violation during account insert",
				slog.String("error", mapped.Error()))
			return mapped
		}
		log.Error("failed to insert account",
			slog.String("error", err.Error()))
		return store.NewStoreError("account", "insert", "failed to insert account", mapped)
	}

	account.ID = id
	account.CreatedAt = ts
	account.UpdatedAt = ts

	log.Info("account created", slog.String("account_id", id.String()))
	return nil
}

// findOne runs a single-row query and maps sql.ErrNoRows to store.ErrAccountNotFound.
func (s *PostgresAccountStore) findOne(ctx context.Context, op, query string, args ...any) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found", slog.String("lookup", op))
			return nil, store.ErrAccountNotFound
		}
		log.Error("failed to find account",
			slog.String("lookup", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("account", op, "query failed", err)
	}
	return account, nil
}

// FindByID implements store.AccountStore.FindByID.
func (s *PostgresAccountStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if s.inTx {
		query += ` FOR UPDATE`
	}
	return s.findOne(ctx, "find_by_id", query, id)
}

// FindByHandle implements store.AccountStore.FindByHandle.
func (s *PostgresAccountStore) FindByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1`
	return s.findOne(ctx, "find_by_handle", query, handle)
}

// FindByEmail implements store.AccountStore.FindByEmail.
func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	return s.findOne(ctx, "find_by_email", query, email)
}

// FindByHandleOrEmail implements store.AccountStore.FindByHandleOrEmail.
func (s *PostgresAccountStore) FindByHandleOrEmail(ctx context.Context, handleOrEmail string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE handle = $1 OR LOWER(email) = LOWER($1)
		ORDER BY (handle = $1) DESC
		LIMIT 1
	`
	return s.findOne(ctx, "find_by_handle_or_email", query, handleOrEmail)
}

func (s *PostgresAccountStore) exists(ctx context.Context, op, query string, arg any) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check existence",
			slog.String("lookup", op),
			slog.String("error", err.Error()))
		return false, store.NewStoreError("account", op, "query failed", err)
	}
	return exists, nil
}

// ExistsByHandle implements store.AccountStore.ExistsByHandle.
func (s *PostgresAccountStore) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	return s.exists(ctx, "exists_by_handle",
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE handle = $1)`, handle)
}

// ExistsByEmail implements store.AccountStore.ExistsByEmail.
func (s *PostgresAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "exists_by_email",
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1))`, email)
}

// list runs a multi-row query and scans every account.
func (s *PostgresAccountStore) list(ctx context.Context, op, query string, args ...any) ([]*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list accounts",
			slog.String("lookup", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("account", op, "query failed", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			log.Error("failed to scan account row",
				slog.String("lookup", op),
				slog.String("error", err.Error()))
			return nil, store.NewStoreError("account", op, "scan failed", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating account rows",
			slog.String("lookup", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("account", op, "row iteration failed", err)
	}

	log.Debug("accounts listed", slog.String("lookup", op), slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *PostgresAccountStore) count(ctx context.Context, op, where string, args ...any) (int64, error) {
	query := `SELECT COUNT(*) FROM accounts`
	if where != "" {
		query += ` WHERE ` + where
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count accounts",
			slog.String("lookup", op),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("account", op, "count failed", err)
	}
	return n, nil
}

// orderClause builds ORDER BY from a whitelisted column. Ties fall back to
// creation order so pages are stable.
func orderClause(page store.PageRequest) string {
	column := sortColumns[page.OrderBy()]
	dir := "ASC"
	if page.Descending {
		dir = "DESC"
	}
	if column == "created_at" {
		return fmt.Sprintf("created_at %s, id %s", dir, dir)
	}
	return fmt.Sprintf("%s %s, %s", column, dir, creationOrder)
}

// page counts the rows matching where and fetches the requested slice.
func (s *PostgresAccountStore) page(
	ctx context.Context,
	op, where, order string,
	req store.PageRequest,
	args ...any,
) (*store.AccountPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	total, err := s.count(ctx, op, where, args...)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if where != "" {
		query += ` WHERE ` + where
	}
	n := len(args)
	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, order, n+1, n+2)

	items, err := s.list(ctx, op, query, append(args, req.Size, req.Offset())...)
	if err != nil {
		return nil, err
	}
	return store.NewAccountPage(items, total, req), nil
}

// ListAll implements store.AccountStore.ListAll.
func (s *PostgresAccountStore) ListAll(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	return s.page(ctx, "list_all", "", orderClause(page), page)
}

// ListActive implements store.AccountStore.ListActive.
func (s *PostgresAccountStore) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return s.list(ctx, "list_active",
		`SELECT `+accountColumns+` FROM accounts WHERE is_active ORDER BY `+creationOrder)
}

// ListActivePaged implements store.AccountStore.ListActivePaged.
func (s *PostgresAccountStore) ListActivePaged(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	return s.page(ctx, "list_active_paged", "is_active", orderClause(page), page)
}

// ListByRole implements store.AccountStore.ListByRole.
func (s *PostgresAccountStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return s.list(ctx, "list_by_role",
		`SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY `+creationOrder, string(role))
}

// ListByEmailVerified implements store.AccountStore.ListByEmailVerified.
func (s *PostgresAccountStore) ListByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error) {
	return s.list(ctx, "list_by_email_verified",
		`SELECT `+accountColumns+` FROM accounts WHERE is_email_verified = $1 ORDER BY `+creationOrder, verified)
}

// ListByCreatedBetween implements store.AccountStore.ListByCreatedBetween.
func (s *PostgresAccountStore) ListByCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error) {
	return s.list(ctx, "list_by_created_between",
		`SELECT `+accountColumns+` FROM accounts WHERE created_at BETWEEN $1 AND $2 ORDER BY `+creationOrder,
		start, end)
}

// ListByNameExact implements store.AccountStore.ListByNameExact.
func (s *PostgresAccountStore) ListByNameExact(ctx context.Context, firstName, lastName string) ([]*domain.Account, error) {
	return s.list(ctx, "list_by_name_exact",
		`SELECT `+accountColumns+` FROM accounts
		WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)
		ORDER BY `+creationOrder,
		firstName, lastName)
}

// likePattern escapes LIKE metacharacters in term and wraps it for a substring match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// SearchByNameOrHandle implements store.AccountStore.SearchByNameOrHandle.
func (s *PostgresAccountStore) SearchByNameOrHandle(
	ctx context.Context,
	term string,
	page store.PageRequest,
) (*store.AccountPage, error) {
	where := `(first_name ILIKE $1 OR last_name ILIKE $1 OR handle ILIKE $1)`
	return s.page(ctx, "search", where, creationOrder, page, likePattern(term))
}

// ListInactiveSince implements store.AccountStore.ListInactiveSince.
func (s *PostgresAccountStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	return s.list(ctx, "list_inactive_since",
		`SELECT `+accountColumns+` FROM accounts
		WHERE last_login IS NULL OR last_login < $1
		ORDER BY `+creationOrder,
		cutoff)
}

// Update implements store.AccountStore.Update.
// CreatedAt and LastLogin are read back from the row and copied onto account.
func (s *PostgresAccountStore) Update(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		log.Warn("account validation failed during update",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID.String()))
		return err
	}

	query := `
		UPDATE accounts
		SET handle = $1, email = $2, credential_hash = $3, first_name = $4, last_name = $5,
			phone_number = $6, role = $7, is_active = $8, is_email_verified = $9,
			updated_at = GREATEST($10, created_at)
		WHERE id = $11
		RETURNING created_at, updated_at, last_login
	`
	var lastLogin sql.NullTime
	var createdAt, updatedAt time.Time
	err := s.db.QueryRowContext(
		ctx,
		query,
		account.Handle,
		account.Email,
		account.CredentialHash,
		account.FirstName,
		account.LastName,
		account.PhoneNumber,
		string(account.Role),
		account.IsActive,
		account.IsEmailVerified,
		now(),
		account.ID,
	).Scan(&createdAt, &updatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found for update", slog.String("account_id", account.ID.String()))
			return store.ErrAccountNotFound
		}
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update account",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID.String()))
		return store.NewStoreError("account", "update", "failed to update account", mapped)
	}

	account.CreatedAt = createdAt.UTC()
	account.UpdatedAt = updatedAt.UTC()
	account.LastLogin = nil
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		account.LastLogin = &t
	}

	log.Debug("account updated", slog.String("account_id", account.ID.String()))
	return nil
}

// exec runs a single-row UPDATE and reports store.ErrAccountNotFound when no row matched.
func (s *PostgresAccountStore) exec(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update account",
			slog.String("operation", op),
			slog.String("error", err.Error()),
			slog.String("account_id", id.String()))
		return store.NewStoreError("account", op, "failed to update account", MapError(err))
	}
	if err := CheckRowsAffected(result); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("account not found", slog.String("account_id", id.String()))
		}
		return err
	}
	return nil
}

// UpdateLastLogin implements store.AccountStore.UpdateLastLogin.
func (s *PostgresAccountStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.exec(ctx, "update_last_login", id,
		`UPDATE accounts SET last_login = $1, updated_at = GREATEST($1, created_at) WHERE id = $2`,
		at.UTC(), id)
}

// UpdateActiveFlag implements store.AccountStore.UpdateActiveFlag.
func (s *PostgresAccountStore) UpdateActiveFlag(ctx context.Context, id uuid.UUID, active bool) error {
	return s.exec(ctx, "update_active_flag", id,
		`UPDATE accounts SET is_active = $1, updated_at = GREATEST($2, created_at) WHERE id = $3`,
		active, now(), id)
}

// UpdateEmailVerified implements store.AccountStore.UpdateEmailVerified.
func (s *PostgresAccountStore) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return s.exec(ctx, "update_email_verified", id,
		`UPDATE accounts SET is_email_verified = $1, updated_at = GREATEST($2, created_at) WHERE id = $3`,
		verified, now(), id)
}

// Count implements store.AccountStore.Count.
func (s *PostgresAccountStore) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, "count", "")
}

// CountActive implements store.AccountStore.CountActive.
func (s *PostgresAccountStore) CountActive(ctx context.Context) (int64, error) {
	return s.count(ctx, "count_active", "is_active")
}

// CountByRole implements store.AccountStore.CountByRole.
func (s *PostgresAccountStore) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return s.count(ctx, "count_by_role", "role = $1", string(role))
}

// CountCreatedBetween implements store.AccountStore.CountCreatedBetween.
func (s *PostgresAccountStore) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return s.count(ctx, "count_created_between", "created_at BETWEEN $1 AND $2", start, end)
}

// DeleteByID implements store.AccountStore.DeleteByID.
func (s *PostgresAccountStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete account",
			slog.String("error", err.Error()),
			slog.String("account_id", id.String()))
		return false, store.NewStoreError("account", "delete", "failed to delete account", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("account", "delete", "failed to get rows affected", err)
	}

	if rows > 0 {
		log.Info("account deleted", slog.String("account_id", id.String()))
	}
	return rows > 0, nil
}
