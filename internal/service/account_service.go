package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/events"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/phrazzld/account-service/internal/redact"
	"github.com/phrazzld/account-service/internal/service/auth"
	"github.com/phrazzld/account-service/internal/store"
	"golang.org/x/sync/errgroup"
)

// MaxInactiveDays bounds the look-back window of ListInactiveAccounts to
// a century.
const MaxInactiveDays = 36500

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Handle      string
	Email       string
	Secret      string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UpdateAccountInput lists the profile fields to change. Nil fields are left untouched.
type UpdateAccountInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// AccountStats summarizes the account population.
type AccountStats struct {
	Total           int64
	Active          int64
	ByRole          map[domain.Role]int64
	RegisteredToday int64
}

// AccountService provides account management operations
type AccountService interface {
	// Register creates an account with role USER, active and unverified.
	// Returns ErrDuplicateHandle or ErrDuplicateEmail when either value is taken.
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)

	// GetAccount retrieves an account by ID
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetAccountByHandle retrieves an account by its exact handle
	GetAccountByHandle(ctx context.Context, handle string) (*domain.Account, error)

	// GetAccountByEmail retrieves an account by email, ignoring case
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// ListAccounts returns one page of every account
	ListAccounts(ctx context.Context, page store.PageRequest) (*store.AccountPage, error)

	// ListActiveAccounts returns every active account
	ListActiveAccounts(ctx context.Context) ([]*domain.Account, error)

	// ListActiveAccountsPaged returns one page of active accounts
	ListActiveAccountsPaged(ctx context.Context, page store.PageRequest) (*store.AccountPage, error)

	// ListAccountsByRole returns every account holding role
	ListAccountsByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error)

	// ListAccountsByEmailVerified returns accounts by verification state
	ListAccountsByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error)

	// FindAccountsByName returns accounts whose first and last name match exactly, ignoring case
	FindAccountsByName(ctx context.Context, firstName, lastName string) ([]*domain.Account, error)

	// SearchAccounts returns one page of accounts whose first name, last name
	// or handle contains term, ignoring case, in creation order
	SearchAccounts(ctx context.Context, term string, page store.PageRequest) (*store.AccountPage, error)

	// ListAccountsCreatedBetween returns accounts created in the closed interval [start, end]
	ListAccountsCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error)

	// ListInactiveAccounts returns accounts without a login in the last days days
	ListInactiveAccounts(ctx context.Context, days int) ([]*domain.Account, error)

	// UpdateAccount applies the provided profile changes.
	// A changed email clears the verification flag.
	UpdateAccount(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (*domain.Account, error)

	// Activate marks the account active
	Activate(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// Deactivate marks the account inactive; inactive accounts cannot authenticate
	Deactivate(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// VerifyEmail marks the account's email verified
	VerifyEmail(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// SetRole assigns a role from the closed role set
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error)

	// ChangeSecret replaces the secret when currentSecret is correct.
	// It reports false, with a nil error, when currentSecret does not match.
	ChangeSecret(ctx context.Context, id uuid.UUID, currentSecret, newSecret string) (bool, error)

	// Authenticate checks a secret against the account whose handle or email
	// equals handleOrEmail. Unknown accounts, inactive accounts and wrong
	// secrets all report false. The error is non-nil only for store failures.
	Authenticate(ctx context.Context, handleOrEmail, secret string) (uuid.UUID, bool, error)

	// RecordLogin stamps the account's last login with the current time
	RecordLogin(ctx context.Context, id uuid.UUID) error

	// IsHandleAvailable reports whether no account uses handle. The answer is advisory.
	IsHandleAvailable(ctx context.Context, handle string) (bool, error)

	// IsEmailAvailable reports whether no account uses email. The answer is advisory.
	IsEmailAvailable(ctx context.Context, email string) (bool, error)

	// DeleteAccount permanently removes the account
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	// GetStats counts accounts in total, active, per role and registered today (UTC)
	GetStats(ctx context.Context) (*AccountStats, error)
}

// Option configures an AccountService.
type Option func(*accountServiceImpl)

// WithClock overrides the time source used for login stamps and date windows.
func WithClock(now func() time.Time) Option {
	return func(s *accountServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventEmitter publishes lifecycle events to emitter.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *accountServiceImpl) {
		s.emitter = emitter
	}
}

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	accounts store.AccountStore
	hasher   auth.CredentialHasher
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
// It returns an error if any of the required dependencies are nil.
func NewAccountService(
	accounts store.AccountStore,
	hasher auth.CredentialHasher,
	logger *slog.Logger,
	opts ...Option,
) (AccountService, error) {
	if accounts == nil {
		return nil, &AccountServiceError{Operation: "create_service", Message: "account store cannot be nil"}
	}
	if hasher == nil {
		return nil, &AccountServiceError{Operation: "create_service", Message: "credential hasher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &accountServiceImpl{
		accounts: accounts,
		hasher:   hasher,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "account_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *accountServiceImpl) clock() time.Time {
	return s.now().UTC()
}

// fail logs an error and translates it for the caller. Expected outcomes are
// logged at debug level, store failures at error level.
func (s *accountServiceImpl) fail(ctx context.Context, operation, message string, err error) error {
	mapped := NewAccountServiceError(operation, message, err)
	log := logger.FromContextOrDefault(ctx, s.logger)
	if errors.Is(mapped, ErrStoreFailure) || errors.Is(mapped, ErrCredentialHashing) {
		log.ErrorContext(ctx, message,
			slog.String("operation", operation),
			slog.String("error", redact.Error(err)))
	} else {
		log.DebugContext(ctx, message,
			slog.String("operation", operation),
			slog.String("error", mapped.Error()))
	}
	return mapped
}

// emit publishes an event. Emission failures are logged and swallowed.
func (s *accountServiceImpl) emit(ctx context.Context, eventType string, id uuid.UUID, attrs map[string]string) {
	if s.emitter == nil {
		return
	}
	event := events.NewAccountEvent(eventType, id, s.clock(), attrs)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to emit account event",
			slog.String("event_type", eventType),
			slog.String("account_id", id.String()),
			slog.String("error", redact.Error(err)))
	}
}

// Register implements AccountService.Register
func (s *accountServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := domain.NewAccount(input.Handle, input.Email, domain.Profile{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSecret("secret", input.Secret); err != nil {
		return nil, err
	}

	taken, err := s.accounts.ExistsByHandle(ctx, account.Handle)
	if err != nil {
		return nil, s.fail(ctx, "register", "failed to check handle", err)
	}
	if taken {
		return nil, ErrDuplicateHandle
	}

	taken, err = s.accounts.ExistsByEmail(ctx, account.Email)
	if err != nil {
		return nil, s.fail(ctx, "register", "failed to check email", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Secret)
	if err != nil {
		return nil, s.fail(ctx, "register", "failed to hash secret", fmt.Errorf("%w: %w", ErrCredentialHashing, err))
	}
	account.CredentialHash = hash

	// The store's unique indexes settle races the pre-checks above cannot see.
	if err := s.accounts.Insert(ctx, account); err != nil {
		return nil, s.fail(ctx, "register", "failed to save account", err)
	}

	log.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID.String()),
		slog.String("handle", account.Handle))
	s.emit(ctx, events.AccountRegistered, account.ID, map[string]string{"handle": account.Handle})

	return account, nil
}

// GetAccount implements AccountService.GetAccount
func (s *accountServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get_account", "failed to get account", err)
	}
	return account, nil
}

// GetAccountByHandle implements AccountService.GetAccountByHandle
func (s *accountServiceImpl) GetAccountByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	account, err := s.accounts.FindByHandle(ctx, domain.NormalizeHandle(handle))
	if err != nil {
		return nil, s.fail(ctx, "get_account_by_handle", "failed to get account", err)
	}
	return account, nil
}

// GetAccountByEmail implements AccountService.GetAccountByEmail
func (s *accountServiceImpl) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, s.fail(ctx, "get_account_by_email", "failed to get account", err)
	}
	return account, nil
}

// ListAccounts implements AccountService.ListAccounts
func (s *accountServiceImpl) ListAccounts(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	result, err := s.accounts.ListAll(ctx, page)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts", "failed to list accounts", err)
	}
	return result, nil
}

// ListActiveAccounts implements AccountService.ListActiveAccounts
func (s *accountServiceImpl) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListActive(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list_active_accounts", "failed to list active accounts", err)
	}
	return accounts, nil
}

// ListActiveAccountsPaged implements AccountService.ListActiveAccountsPaged
func (s *accountServiceImpl) ListActiveAccountsPaged(
	ctx context.Context,
	page store.PageRequest,
) (*store.AccountPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	result, err := s.accounts.ListActivePaged(ctx, page)
	if err != nil {
		return nil, s.fail(ctx, "list_active_accounts_paged", "failed to list active accounts", err)
	}
	return result, nil
}

// ListAccountsByRole implements AccountService.ListAccountsByRole
func (s *accountServiceImpl) ListAccountsByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of ADMIN, MANAGER, USER, GUEST", domain.ErrInvalidRole)
	}
	accounts, err := s.accounts.ListByRole(ctx, role)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts_by_role", "failed to list accounts by role", err)
	}
	return accounts, nil
}

// ListAccountsByEmailVerified implements AccountService.ListAccountsByEmailVerified
func (s *accountServiceImpl) ListAccountsByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListByEmailVerified(ctx, verified)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts_by_email_verified", "failed to list accounts", err)
	}
	return accounts, nil
}

// FindAccountsByName implements AccountService.FindAccountsByName
func (s *accountServiceImpl) FindAccountsByName(ctx context.Context, firstName, lastName string) ([]*domain.Account, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil, domain.NewValidationError("name", "first or last name is required", domain.ErrEmptyContent)
	}
	accounts, err := s.accounts.ListByNameExact(ctx, firstName, lastName)
	if err != nil {
		return nil, s.fail(ctx, "find_accounts_by_name", "failed to find accounts by name", err)
	}
	return accounts, nil
}

// SearchAccounts implements AccountService.SearchAccounts
func (s *accountServiceImpl) SearchAccounts(
	ctx context.Context,
	term string,
	page store.PageRequest,
) (*store.AccountPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("q", "search term cannot be empty", domain.ErrEmptyContent)
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	result, err := s.accounts.SearchByNameOrHandle(ctx, term, page)
	if err != nil {
		return nil, s.fail(ctx, "search_accounts", "failed to search accounts", err)
	}
	return result, nil
}

// ListAccountsCreatedBetween implements AccountService.ListAccountsCreatedBetween
func (s *accountServiceImpl) ListAccountsCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*domain.Account, error) {
	if start.After(end) {
		return nil, domain.NewValidationError("from", "must not be after to", domain.ErrInvalidFormat)
	}
	accounts, err := s.accounts.ListByCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts_created_between", "failed to list accounts", err)
	}
	return accounts, nil
}

// ListInactiveAccounts implements AccountService.ListInactiveAccounts
func (s *accountServiceImpl) ListInactiveAccounts(ctx context.Context, days int) ([]*domain.Account, error) {
	if days < 0 {
		return nil, domain.NewValidationError("days", "cannot be negative", domain.ErrInvalidFormat)
	}
	if days > MaxInactiveDays {
		return nil, domain.NewValidationError("days",
			fmt.Sprintf("cannot exceed %d", MaxInactiveDays), domain.ErrInvalidFormat)
	}
	cutoff := s.clock().AddDate(0, 0, -days)
	accounts, err := s.accounts.ListInactiveSince(ctx, cutoff)
	if err != nil {
		return nil, s.fail(ctx, "list_inactive_accounts", "failed to list inactive accounts", err)
	}
	return accounts, nil
}

func validateUpdate(input UpdateAccountInput) (UpdateAccountInput, error) {
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if err := domain.ValidateEmail(email); err != nil {
			return input, err
		}
		input.Email = &email
	}
	if input.FirstName != nil {
		if err := domain.ValidateName("first_name", *input.FirstName); err != nil {
			return input, err
		}
	}
	if input.LastName != nil {
		if err := domain.ValidateName("last_name", *input.LastName); err != nil {
			return input, err
		}
	}
	if input.PhoneNumber != nil {
		if err := domain.ValidatePhoneNumber(*input.PhoneNumber); err != nil {
			return input, err
		}
	}
	return input, nil
}

// UpdateAccount implements AccountService.UpdateAccount
func (s *accountServiceImpl) UpdateAccount(
	ctx context.Context,
	id uuid.UUID,
	input UpdateAccountInput,
) (*domain.Account, error) {
	input, err := validateUpdate(input)
	if err != nil {
		return nil, err
	}

	var updated *domain.Account
	var changed []string
	err = s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		account, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Email != nil && *input.Email != account.Email {
			taken, err := tx.ExistsByEmail(ctx, *input.Email)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateEmail
			}
			if _, err := account.ChangeEmail(*input.Email); err != nil {
				return err
			}
			changed = append(changed, "email")
		}
		if input.FirstName != nil {
			account.FirstName = *input.FirstName
			changed = append(changed, "first_name")
		}
		if input.LastName != nil {
			account.LastName = *input.LastName
			changed = append(changed, "last_name")
		}
		if input.PhoneNumber != nil {
			account.PhoneNumber = *input.PhoneNumber
			changed = append(changed, "phone_number")
		}

		if err := tx.Update(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "update_account", "failed to update account", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "account updated",
		slog.String("account_id", id.String()),
		slog.Any("fields", changed))
	s.emit(ctx, events.AccountUpdated, id, map[string]string{"fields": strings.Join(changed, ",")})

	return updated, nil
}

// setFlag runs a targeted flag write inside a transaction and returns the
// fresh account along with the flag's previous value.
func (s *accountServiceImpl) setFlag(
	ctx context.Context,
	id uuid.UUID,
	current func(*domain.Account) bool,
	write func(ctx context.Context, tx store.AccountStore) error,
) (*domain.Account, bool, error) {
	var updated *domain.Account
	var previous bool
	err := s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		account, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = current(account)

		if err := write(ctx, tx); err != nil {
			return err
		}

		updated, err = tx.FindByID(ctx, id)
		return err
	})
	return updated, previous, err
}

// Activate implements AccountService.Activate
func (s *accountServiceImpl) Activate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, wasActive, err := s.setFlag(ctx, id,
		func(a *domain.Account) bool { return a.IsActive },
		func(ctx context.Context, tx store.AccountStore) error { return tx.UpdateActiveFlag(ctx, id, true) })
	if err != nil {
		return nil, s.fail(ctx, "activate", "failed to activate account", err)
	}
	if !wasActive {
		s.emit(ctx, events.AccountActivated, id, nil)
	}
	return account, nil
}

// Deactivate implements AccountService.Deactivate
func (s *accountServiceImpl) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, wasActive, err := s.setFlag(ctx, id,
		func(a *domain.Account) bool { return a.IsActive },
		func(ctx context.Context, tx store.AccountStore) error { return tx.UpdateActiveFlag(ctx, id, false) })
	if err != nil {
		return nil, s.fail(ctx, "deactivate", "failed to deactivate account", err)
	}
	if wasActive {
		s.emit(ctx, events.AccountDeactivated, id, nil)
	}
	return account, nil
}

// VerifyEmail implements AccountService.VerifyEmail
func (s *accountServiceImpl) VerifyEmail(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, wasVerified, err := s.setFlag(ctx, id,
		func(a *domain.Account) bool { return a.IsEmailVerified },
		func(ctx context.Context, tx store.AccountStore) error { return tx.UpdateEmailVerified(ctx, id, true) })
	if err != nil {
		return nil, s.fail(ctx, "verify_email", "failed to verify email", err)
	}
	if !wasVerified {
		s.emit(ctx, events.AccountEmailVerified, id, nil)
	}
	return account, nil
}

// SetRole implements AccountService.SetRole
func (s *accountServiceImpl) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of ADMIN, MANAGER, USER, GUEST", domain.ErrInvalidRole)
	}

	var updated *domain.Account
	var previous domain.Role
	err := s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		account, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = account.Role
		if err := account.SetRole(role); err != nil {
			return err
		}
		if err := tx.Update(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "set_role", "failed to set role", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "account role changed",
		slog.String("account_id", id.String()),
		slog.String("from", string(previous)),
		slog.String("to", string(role)))
	if previous != role {
		s.emit(ctx, events.AccountRoleChanged, id, map[string]string{"from": string(previous), "to": string(role)})
	}

	return updated, nil
}

// ChangeSecret implements AccountService.ChangeSecret
func (s *accountServiceImpl) ChangeSecret(
	ctx context.Context,
	id uuid.UUID,
	currentSecret, newSecret string,
) (bool, error) {
	if err := domain.ValidateSecret("new_secret", newSecret); err != nil {
		return false, err
	}

	changed := false
	err := s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		account, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(currentSecret, account.CredentialHash) {
			return nil
		}

		hash, err := s.hasher.Hash(newSecret)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCredentialHashing, err)
		}
		account.CredentialHash = hash
		if err := tx.Update(ctx, account); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, s.fail(ctx, "change_secret", "failed to change secret", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	if !changed {
		log.InfoContext(ctx, "secret change rejected: current secret incorrect",
			slog.String("account_id", id.String()))
		return false, nil
	}

	log.InfoContext(ctx, "account secret changed", slog.String("account_id", id.String()))
	s.emit(ctx, events.AccountSecretChanged, id, nil)
	return true, nil
}

// Authenticate implements AccountService.Authenticate
func (s *accountServiceImpl) Authenticate(ctx context.Context, handleOrEmail, secret string) (uuid.UUID, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	handleOrEmail = strings.TrimSpace(handleOrEmail)
	if handleOrEmail == "" || secret == "" {
		return uuid.Nil, false, nil
	}

	account, err := s.accounts.FindByHandleOrEmail(ctx, handleOrEmail)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.DebugContext(ctx, "authentication failed")
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, s.fail(ctx, "authenticate", "failed to look up account", err)
	}

	// The three failure causes below must stay indistinguishable to callers.
	if !account.IsActive || !s.hasher.Verify(secret, account.CredentialHash) {
		log.DebugContext(ctx, "authentication failed", slog.String("account_id", account.ID.String()))
		return uuid.Nil, false, nil
	}

	log.DebugContext(ctx, "authentication succeeded", slog.String("account_id", account.ID.String()))
	return account.ID, true, nil
}

// RecordLogin implements AccountService.RecordLogin
func (s *accountServiceImpl) RecordLogin(ctx context.Context, id uuid.UUID) error {
	at := s.clock()
	if err := s.accounts.UpdateLastLogin(ctx, id, at); err != nil {
		return s.fail(ctx, "record_login", "failed to record login", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "login recorded",
		slog.String("account_id", id.String()),
		slog.Time("at", at))
	return nil
}

// IsHandleAvailable implements AccountService.IsHandleAvailable
func (s *accountServiceImpl) IsHandleAvailable(ctx context.Context, handle string) (bool, error) {
	taken, err := s.accounts.ExistsByHandle(ctx, domain.NormalizeHandle(handle))
	if err != nil {
		return false, s.fail(ctx, "is_handle_available", "failed to check handle", err)
	}
	return !taken, nil
}

// IsEmailAvailable implements AccountService.IsEmailAvailable
func (s *accountServiceImpl) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.accounts.ExistsByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return false, s.fail(ctx, "is_email_available", "failed to check email", err)
	}
	return !taken, nil
}

// DeleteAccount implements AccountService.DeleteAccount
func (s *accountServiceImpl) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	removed, err := s.accounts.DeleteByID(ctx, id)
	if err != nil {
		return s.fail(ctx, "delete_account", "failed to delete account", err)
	}
	if !removed {
		return ErrAccountNotFound
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "account deleted",
		slog.String("account_id", id.String()))
	s.emit(ctx, events.AccountDeleted, id, nil)
	return nil
}

// GetStats implements AccountService.GetStats
func (s *accountServiceImpl) GetStats(ctx context.Context) (*AccountStats, error) {
	now := s.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	stats := &AccountStats{ByRole: make(map[domain.Role]int64, len(domain.Roles))}
	roleCounts := make([]int64, len(domain.Roles))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.accounts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Active, err = s.accounts.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.RegisteredToday, err = s.accounts.CountCreatedBetween(gctx, dayStart, dayEnd)
		return err
	})
	for i, role := range domain.Roles {
		g.Go(func() (err error) {
			roleCounts[i], err = s.accounts.CountByRole(gctx, role)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "get_stats", "failed to compute account statistics", err)
	}

	for i, role := range domain.Roles {
		stats.ByRole[role] = roleCounts[i]
	}
	return stats, nil
}

var _ AccountService = (*accountServiceImpl)(nil)
