package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/store"
)

// MockAccountService implements service.AccountService for testing.
// A nil function field falls back to the default return values.
type MockAccountService struct {
	// Custom behavior functions
	RegisterFn                    func(ctx context.Context, input service.RegisterInput) (*domain.Account, error)
	GetAccountFn                  func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByHandleFn          func(ctx context.Context, handle string) (*domain.Account, error)
	GetAccountByEmailFn           func(ctx context.Context, email string) (*domain.Account, error)
	ListAccountsFn                func(ctx context.Context, page store.PageRequest) (*store.AccountPage, error)
	ListActiveAccountsFn          func(ctx context.Context) ([]*domain.Account, error)
	ListActiveAccountsPagedFn     func(ctx context.Context, page store.PageRequest) (*store.AccountPage, error)
	ListAccountsByRoleFn          func(ctx context.Context, role domain.Role) ([]*domain.Account, error)
	ListAccountsByEmailVerifiedFn func(ctx context.Context, verified bool) ([]*domain.Account, error)
	FindAccountsByNameFn          func(ctx context.Context, firstName, lastName string) ([]*domain.Account, error)
	SearchAccountsFn              func(ctx context.Context, term string, page store.PageRequest) (*store.AccountPage, error)
	ListAccountsCreatedBetweenFn  func(ctx context.Context, start, end time.Time) ([]*domain.Account, error)
	ListInactiveAccountsFn        func(ctx context.Context, days int) ([]*domain.Account, error)
	UpdateAccountFn               func(ctx context.Context, id uuid.UUID, input service.UpdateAccountInput) (*domain.Account, error)
	ActivateFn                    func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	DeactivateFn                  func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	VerifyEmailFn                 func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	SetRoleFn                     func(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error)
	ChangeSecretFn                func(ctx context.Context, id uuid.UUID, currentSecret, newSecret string) (bool, error)
	AuthenticateFn                func(ctx context.Context, handleOrEmail, secret string) (uuid.UUID, bool, error)
	RecordLoginFn                 func(ctx context.Context, id uuid.UUID) error
	IsHandleAvailableFn           func(ctx context.Context, handle string) (bool, error)
	IsEmailAvailableFn            func(ctx context.Context, email string) (bool, error)
	DeleteAccountFn               func(ctx context.Context, id uuid.UUID) error
	GetStatsFn                    func(ctx context.Context) (*service.AccountStats, error)

	// Default return values
	Account      *domain.Account
	Accounts     []*domain.Account
	Page         *store.AccountPage
	Stats        *service.AccountStats
	DefaultError error
}

// Register implements the AccountService.Register method
func (m *MockAccountService) Register(ctx context.Context, input service.RegisterInput) (*domain.Account, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, input)
	}
	return m.Account, m.DefaultError
}

// GetAccount implements the AccountService.GetAccount method
func (m *MockAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, id)
	}
	return m.Account, m.DefaultError
}

// GetAccountByHandle implements the AccountService.GetAccountByHandle method
func (m *MockAccountService) GetAccountByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	if m.GetAccountByHandleFn != nil {
		return m.GetAccountByHandleFn(ctx, handle)
	}
	return m.Account, m.DefaultError
}

// GetAccountByEmail implements the AccountService.GetAccountByEmail method
func (m *MockAccountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetAccountByEmailFn != nil {
		return m.GetAccountByEmailFn(ctx, email)
	}
	return m.Account, m.DefaultError
}

// ListAccounts implements the AccountService.ListAccounts method
func (m *MockAccountService) ListAccounts(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	if m.ListAccountsFn != nil {
		return m.ListAccountsFn(ctx, page)
	}
	return m.Page, m.DefaultError
}

// ListActiveAccounts implements the AccountService.ListActiveAccounts method
func (m *MockAccountService) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	if m.ListActiveAccountsFn != nil {
		return m.ListActiveAccountsFn(ctx)
	}
	return m.Accounts, m.DefaultError
}

// ListActiveAccountsPaged implements the AccountService.ListActiveAccountsPaged method
func (m *MockAccountService) ListActiveAccountsPaged(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	if m.ListActiveAccountsPagedFn != nil {
		return m.ListActiveAccountsPagedFn(ctx, page)
	}
	return m.Page, m.DefaultError
}

// ListAccountsByRole implements the AccountService.ListAccountsByRole method
func (m *MockAccountService) ListAccountsByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	if m.ListAccountsByRoleFn != nil {
		return m.ListAccountsByRoleFn(ctx, role)
	}
	return m.Accounts, m.DefaultError
}

// ListAccountsByEmailVerified implements the AccountService.ListAccountsByEmailVerified method
func (m *MockAccountService) ListAccountsByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error) {
	if m.ListAccountsByEmailVerifiedFn != nil {
		return m.ListAccountsByEmailVerifiedFn(ctx, verified)
	}
	return m.Accounts, m.DefaultError
}

// FindAccountsByName implements the AccountService.FindAccountsByName method
func (m *MockAccountService) FindAccountsByName(ctx context.Context, firstName, lastName string) ([]*domain.Account, error) {
	if m.FindAccountsByNameFn != nil {
		return m.FindAccountsByNameFn(ctx, firstName, lastName)
	}
	return m.Accounts, m.DefaultError
}

// SearchAccounts implements the AccountService.SearchAccounts method
func (m *MockAccountService) SearchAccounts(ctx context.Context, term string, page store.PageRequest) (*store.AccountPage, error) {
	if m.SearchAccountsFn != nil {
		return m.SearchAccountsFn(ctx, term, page)
	}
	return m.Page, m.DefaultError
}

// ListAccountsCreatedBetween implements the AccountService.ListAccountsCreatedBetween method
func (m *MockAccountService) ListAccountsCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error) {
	if m.ListAccountsCreatedBetweenFn != nil {
		return m.ListAccountsCreatedBetweenFn(ctx, start, end)
	}
	return m.Accounts, m.DefaultError
}

// ListInactiveAccounts implements the AccountService.ListInactiveAccounts method
func (m *MockAccountService) ListInactiveAccounts(ctx context.Context, days int) ([]*domain.Account, error) {
	if m.ListInactiveAccountsFn != nil {
		return m.ListInactiveAccountsFn(ctx, days)
	}
	return m.Accounts, m.DefaultError
}

// UpdateAccount implements the AccountService.UpdateAccount method
func (m *MockAccountService) UpdateAccount(ctx context.Context, id uuid.UUID, input service.UpdateAccountInput) (*domain.Account, error) {
	if m.UpdateAccountFn != nil {
		return m.UpdateAccountFn(ctx, id, input)
	}
	return m.Account, m.DefaultError
}

// Activate implements the AccountService.Activate method
func (m *MockAccountService) Activate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if m.ActivateFn != nil {
		return m.ActivateFn(ctx, id)
	}
	return m.Account, m.DefaultError
}

// Deactivate implements the AccountService.Deactivate method
func (m *MockAccountService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if m.DeactivateFn != nil {
		return m.DeactivateFn(ctx, id)
	}
	return m.Account, m.DefaultError
}

// VerifyEmail implements the AccountService.VerifyEmail method
func (m *MockAccountService) VerifyEmail(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, id)
	}
	return m.Account, m.DefaultError
}

// SetRole implements the AccountService.SetRole method
func (m *MockAccountService) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error) {
	if m.SetRoleFn != nil {
		return m.SetRoleFn(ctx, id, role)
	}
	return m.Account, m.DefaultError
}

// ChangeSecret implements the AccountService.ChangeSecret method
func (m *MockAccountService) ChangeSecret(ctx context.Context, id uuid.UUID, currentSecret, newSecret string) (bool, error) {
	if m.ChangeSecretFn != nil {
		return m.ChangeSecretFn(ctx, id, currentSecret, newSecret)
	}
	return false, m.DefaultError
}

// Authenticate implements the AccountService.Authenticate method
func (m *MockAccountService) Authenticate(ctx context.Context, handleOrEmail, secret string) (uuid.UUID, bool, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, handleOrEmail, secret)
	}
	return uuid.Nil, false, m.DefaultError
}

// RecordLogin implements the AccountService.RecordLogin method
func (m *MockAccountService) RecordLogin(ctx context.Context, id uuid.UUID) error {
	if m.RecordLoginFn != nil {
		return m.RecordLoginFn(ctx, id)
	}
	return m.DefaultError
}

// IsHandleAvailable implements the AccountService.IsHandleAvailable method
func (m *MockAccountService) IsHandleAvailable(ctx context.Context, handle string) (bool, error) {
	if m.IsHandleAvailableFn != nil {
		return m.IsHandleAvailableFn(ctx, handle)
	}
	return false, m.DefaultError
}

// IsEmailAvailable implements the AccountService.IsEmailAvailable method
func (m *MockAccountService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	if m.IsEmailAvailableFn != nil {
		return m.IsEmailAvailableFn(ctx, email)
	}
	return false, m.DefaultError
}

// DeleteAccount implements the AccountService.DeleteAccount method
func (m *MockAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if m.DeleteAccountFn != nil {
		return m.DeleteAccountFn(ctx, id)
	}
	return m.DefaultError
}

// GetStats implements the AccountService.GetStats method
func (m *MockAccountService) GetStats(ctx context.Context) (*service.AccountStats, error) {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(ctx)
	}
	return m.Stats, m.DefaultError
}

var _ service.AccountService = (*MockAccountService)(nil)
