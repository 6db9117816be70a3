package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockAccountStore is a mock of store.AccountStore for use with testify/mock.
//
// RunInTx records a call with the context and then runs fn against the mock
// itself, so the calls fn makes are matched by the same expectations. Set
// the expectation with .On("RunInTx", mock.Anything).Return(nil); a non-nil
// error is returned without running fn.
type TestifyMockAccountStore struct {
	mock.Mock
}

func account(args mock.Arguments) (*domain.Account, error) {
	if a, ok := args.Get(0).(*domain.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func accounts(args mock.Arguments) ([]*domain.Account, error) {
	if list, ok := args.Get(0).([]*domain.Account); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func page(args mock.Arguments) (*store.AccountPage, error) {
	if p, ok := args.Get(0).(*store.AccountPage); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// Insert is a mock implementation of store.AccountStore.Insert
func (m *TestifyMockAccountStore) Insert(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

// FindByID is a mock implementation of store.AccountStore.FindByID
func (m *TestifyMockAccountStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return account(m.Called(ctx, id))
}

// FindByHandle is a mock implementation of store.AccountStore.FindByHandle
func (m *TestifyMockAccountStore) FindByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	return account(m.Called(ctx, handle))
}

// FindByEmail is a mock implementation of store.AccountStore.FindByEmail
func (m *TestifyMockAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return account(m.Called(ctx, email))
}

// FindByHandleOrEmail is a mock implementation of store.AccountStore.FindByHandleOrEmail
func (m *TestifyMockAccountStore) FindByHandleOrEmail(ctx context.Context, handleOrEmail string) (*domain.Account, error) {
	return account(m.Called(ctx, handleOrEmail))
}

// ExistsByHandle is a mock implementation of store.AccountStore.ExistsByHandle
func (m *TestifyMockAccountStore) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	args := m.Called(ctx, handle)
	return args.Bool(0), args.Error(1)
}

// ExistsByEmail is a mock implementation of store.AccountStore.ExistsByEmail
func (m *TestifyMockAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// ListAll is a mock implementation of store.AccountStore.ListAll
func (m *TestifyMockAccountStore) ListAll(ctx context.Context, p store.PageRequest) (*store.AccountPage, error) {
	return page(m.Called(ctx, p))
}

// ListActive is a mock implementation of store.AccountStore.ListActive
func (m *TestifyMockAccountStore) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return accounts(m.Called(ctx))
}

// ListActivePaged is a mock implementation of store.AccountStore.ListActivePaged
func (m *TestifyMockAccountStore) ListActivePaged(ctx context.Context, p store.PageRequest) (*store.AccountPage, error) {
	return page(m.Called(ctx, p))
}

// ListByRole is a mock implementation of store.AccountStore.ListByRole
func (m *TestifyMockAccountStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return accounts(m.Called(ctx, role))
}

// ListByEmailVerified is a mock implementation of store.AccountStore.ListByEmailVerified
func (m *TestifyMockAccountStore) ListByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error) {
	return accounts(m.Called(ctx, verified))
}

// ListByCreatedBetween is a mock implementation of store.AccountStore.ListByCreatedBetween
func (m *TestifyMockAccountStore) ListByCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error) {
	return accounts(m.Called(ctx, start, end))
}

// ListByNameExact is a mock implementation of store.AccountStore.ListByNameExact
func (m *TestifyMockAccountStore) ListByNameExact(ctx context.Context, firstName, lastName string) ([]*domain.Account, error) {
	return accounts(m.Called(ctx, firstName, lastName))
}

// SearchByNameOrHandle is a mock implementation of store.AccountStore.SearchByNameOrHandle
func (m *TestifyMockAccountStore) SearchByNameOrHandle(
	ctx context.Context,
	term string,
	p store.PageRequest,
) (*store.AccountPage, error) {
	return page(m.Called(ctx, term, p))
}

// ListInactiveSince is a mock implementation of store.AccountStore.ListInactiveSince
func (m *TestifyMockAccountStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	return accounts(m.Called(ctx, cutoff))
}

// Update is a mock implementation of store.AccountStore.Update
func (m *TestifyMockAccountStore) Update(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

// UpdateLastLogin is a mock implementation of store.AccountStore.UpdateLastLogin
func (m *TestifyMockAccountStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// UpdateActiveFlag is a mock implementation of store.AccountStore.UpdateActiveFlag
func (m *TestifyMockAccountStore) UpdateActiveFlag(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

// UpdateEmailVerified is a mock implementation of store.AccountStore.UpdateEmailVerified
func (m *TestifyMockAccountStore) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}

func (m *TestifyMockAccountStore) count(args mock.Arguments) (int64, error) {
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// Count is a mock implementation of store.AccountStore.Count
func (m *TestifyMockAccountStore) Count(ctx context.Context) (int64, error) {
	return m.count(m.Called(ctx))
}

// CountActive is a mock implementation of store.AccountStore.CountActive
func (m *TestifyMockAccountStore) CountActive(ctx context.Context) (int64, error) {
	return m.count(m.Called(ctx))
}

// CountByRole is a mock implementation of store.AccountStore.CountByRole
func (m *TestifyMockAccountStore) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return m.count(m.Called(ctx, role))
}

// CountCreatedBetween is a mock implementation of store.AccountStore.CountCreatedBetween
func (m *TestifyMockAccountStore) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return m.count(m.Called(ctx, start, end))
}

// DeleteByID is a mock implementation of store.AccountStore.DeleteByID
func (m *TestifyMockAccountStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// RunInTx is a mock implementation of store.AccountStore.RunInTx
func (m *TestifyMockAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

var _ store.AccountStore = (*TestifyMockAccountStore)(nil)
