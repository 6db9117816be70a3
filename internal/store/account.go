package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
)

// AccountTxFn is a function that runs against a transaction-bound AccountStore.
// Returning an error aborts the transaction.
type AccountTxFn func(ctx context.Context, tx AccountStore) error

// AccountStore defines the interface for account data persistence.
// Emails passed to any method are expected to be normalized already
// (see domain.NormalizeEmail).
type AccountStore interface {
	// Insert saves a new account and assigns its ID, CreatedAt and UpdatedAt.
	// Returns ErrHandleExists or ErrEmailExists on a uniqueness violation.
	// Returns validation errors from the domain Account if data is invalid.
	Insert(ctx context.Context, account *domain.Account) error

	// FindByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	// Inside RunInTx the row stays locked until the transaction ends.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// FindByHandle retrieves an account by its exact handle.
	// Returns ErrAccountNotFound if the account does not exist.
	FindByHandle(ctx context.Context, handle string) (*domain.Account, error)

	// FindByEmail retrieves an account by its email address.
	// Returns ErrAccountNotFound if the account does not exist.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindByHandleOrEmail retrieves the account whose handle or email equals
	// the given value. A handle match wins over an email match.
	// Returns ErrAccountNotFound if neither matches.
	FindByHandleOrEmail(ctx context.Context, handleOrEmail string) (*domain.Account, error)

	// ExistsByHandle reports whether an account uses the handle.
	ExistsByHandle(ctx context.Context, handle string) (bool, error)

	// ExistsByEmail reports whether an account uses the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ListAll returns one page of all accounts in the requested order.
	ListAll(ctx context.Context, page PageRequest) (*AccountPage, error)

	// ListActive returns every active account in creation order.
	ListActive(ctx context.Context) ([]*domain.Account, error)

	// ListActivePaged returns one page of active accounts.
	ListActivePaged(ctx context.Context, page PageRequest) (*AccountPage, error)

	// ListByRole returns every account holding the role, in creation order.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error)

	// ListByEmailVerified returns every account whose verification flag equals verified.
	ListByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error)

	// ListByCreatedBetween returns accounts created in the closed interval [start, end].
	ListByCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error)

	// ListByNameExact returns accounts whose first and last name both equal
	// the given values, ignoring case.
	ListByNameExact(ctx context.Context, firstName, lastName string) ([]*domain.Account, error)

	// SearchByNameOrHandle returns one page of accounts where term is a
	// case-insensitive substring of first name, last name or handle.
	// Results are ordered by creation time, then ID.
	SearchByNameOrHandle(ctx context.Context, term string, page PageRequest) (*AccountPage, error)

	// ListInactiveSince returns accounts that never logged in or whose last
	// login is before cutoff.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error)

	// Update persists every mutable field of an existing account and
	// refreshes UpdatedAt on the passed value.
	// Returns ErrAccountNotFound if the account does not exist.
	// Returns ErrHandleExists or ErrEmailExists on a uniqueness violation.
	Update(ctx context.Context, account *domain.Account) error

	// UpdateLastLogin sets LastLogin and UpdatedAt to at.
	// Returns ErrAccountNotFound if the account does not exist.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// UpdateActiveFlag sets IsActive and refreshes UpdatedAt.
	// Returns ErrAccountNotFound if the account does not exist.
	UpdateActiveFlag(ctx context.Context, id uuid.UUID, active bool) error

	// UpdateEmailVerified sets IsEmailVerified and refreshes UpdatedAt.
	// Returns ErrAccountNotFound if the account does not exist.
	UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error

	// Count returns the total number of accounts.
	Count(ctx context.Context) (int64, error)

	// CountActive returns the number of active accounts.
	CountActive(ctx context.Context) (int64, error)

	// CountByRole returns the number of accounts holding the role.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)

	// CountCreatedBetween returns the number of accounts created in [start, end].
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)

	// DeleteByID permanently removes an account. It reports whether a row was removed.
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)

	// RunInTx executes fn inside a transaction. Every call made through the
	// store passed to fn is part of that transaction; it is committed when fn
	// returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn AccountTxFn) error
}
