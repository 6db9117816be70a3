// Package memory provides an in-process implementation of store.AccountStore.
// It backs the "memory" database driver and the service scenario tests.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/phrazzld/account-service/internal/store"
)

// Option configures a MemoryAccountStore.
type Option func(*MemoryAccountStore)

// WithClock sets the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryAccountStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemoryAccountStore implements the store.AccountStore interface with maps
// guarded by a mutex. Handle and email indexes enforce uniqueness under the
// same lock as the writes, so concurrent inserts cannot both succeed.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	byHandle map[string]uuid.UUID
	byEmail  map[string]uuid.UUID // keyed by lower-cased email
	order    []uuid.UUID          // insertion order

	// txMu serializes RunInTx callers.
	txMu sync.Mutex

	now    func() time.Time
	logger *slog.Logger
}

// NewMemoryAccountStore creates an empty store.
// If logger is nil, a default logger will be used.
func NewMemoryAccountStore(logger *slog.Logger, opts ...Option) *MemoryAccountStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MemoryAccountStore{
		accounts: make(map[uuid.UUID]*domain.Account),
		byHandle: make(map[string]uuid.UUID),
		byEmail:  make(map[string]uuid.UUID),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "memory_account_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.AccountStore = (*MemoryAccountStore)(nil)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Insert implements store.AccountStore.Insert.
func (s *MemoryAccountStore) Insert(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		log.Warn("account validation failed during insert", slog.String("error", err.Error()))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byHandle[account.Handle]; ok {
		log.Debug("handle already taken", slog.String("handle", account.Handle))
		return store.ErrHandleExists
	}
	if _, ok := s.byEmail[emailKey(account.Email)]; ok {
		log.Debug("email already taken")
		return store.ErrEmailExists
	}

	now := s.now()
	account.ID = uuid.New()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := account.Clone()
	s.accounts[stored.ID] = stored
	s.byHandle[stored.Handle] = stored.ID
	s.byEmail[emailKey(stored.Email)] = stored.ID
	s.order = append(s.order, stored.ID)

	log.Debug("account inserted", slog.String("account_id", stored.ID.String()))
	return nil
}

// FindByID implements store.AccountStore.FindByID.
func (s *MemoryAccountStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return a.Clone(), nil
}

// FindByHandle implements store.AccountStore.FindByHandle.
func (s *MemoryAccountStore) FindByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHandle[handle]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

// FindByEmail implements store.AccountStore.FindByEmail.
func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

// FindByHandleOrEmail implements store.AccountStore.FindByHandleOrEmail.
func (s *MemoryAccountStore) FindByHandleOrEmail(ctx context.Context, handleOrEmail string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.byHandle[handleOrEmail]; ok {
		return s.accounts[id].Clone(), nil
	}
	if id, ok := s.byEmail[emailKey(handleOrEmail)]; ok {
		return s.accounts[id].Clone(), nil
	}
	return nil, store.ErrAccountNotFound
}

// ExistsByHandle implements store.AccountStore.ExistsByHandle.
func (s *MemoryAccountStore) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byHandle[handle]
	return ok, nil
}

// ExistsByEmail implements store.AccountStore.ExistsByEmail.
func (s *MemoryAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[emailKey(email)]
	return ok, nil
}

// filter returns clones of the accounts matching keep, in insertion order.
func (s *MemoryAccountStore) filter(ctx context.Context, keep func(*domain.Account) bool) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0)
	for _, id := range s.order {
		a, ok := s.accounts[id]
		if !ok {
			continue
		}
		if keep == nil || keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *MemoryAccountStore) count(ctx context.Context, keep func(*domain.Account) bool) (int64, error) {
	matches, err := s.filter(ctx, keep)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

// paginate sorts matches for req and slices out the requested page.
func paginate(matches []*domain.Account, req store.PageRequest, sorted bool) *store.AccountPage {
	if sorted {
		sortAccounts(matches, req.OrderBy(), req.Descending)
	}
	total := int64(len(matches))
	start := min(max(req.Offset(), 0), len(matches))
	end := start + min(max(req.Size, 0), len(matches)-start)
	return store.NewAccountPage(matches[start:end], total, req)
}

// sortAccounts orders accounts by field. Nil LastLogin values sort after
// every timestamp when ascending and before them when descending. Ties keep
// insertion order.
func sortAccounts(accounts []*domain.Account, field store.SortField, desc bool) {
	less := func(a, b *domain.Account) int {
		switch field {
		case store.SortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case store.SortByHandle:
			return strings.Compare(a.Handle, b.Handle)
		case store.SortByEmail:
			return strings.Compare(a.Email, b.Email)
		case store.SortByLastLogin:
			switch {
			case a.LastLogin == nil && b.LastLogin == nil:
				return 0
			case a.LastLogin == nil:
				return 1
			case b.LastLogin == nil:
				return -1
			}
			return a.LastLogin.Compare(*b.LastLogin)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		c := less(accounts[i], accounts[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// ListAll implements store.AccountStore.ListAll.
func (s *MemoryAccountStore) ListAll(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	matches, err := s.filter(ctx, nil)
	if err != nil {
		return nil, err
	}
	return paginate(matches, page, true), nil
}

// ListActive implements store.AccountStore.ListActive.
func (s *MemoryAccountStore) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return s.filter(ctx, func(a *domain.Account) bool { return a.IsActive })
}

// ListActivePaged implements store.AccountStore.ListActivePaged.
func (s *MemoryAccountStore) ListActivePaged(ctx context.Context, page store.PageRequest) (*store.AccountPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	matches, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(matches, page, true), nil
}

// ListByRole implements store.AccountStore.ListByRole.
func (s *MemoryAccountStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	return s.filter(ctx, func(a *domain.Account) bool { return a.Role == role })
}

// ListByEmailVerified implements store.AccountStore.ListByEmailVerified.
func (s *MemoryAccountStore) ListByEmailVerified(ctx context.Context, verified bool) ([]*domain.Account, error) {
	return s.filter(ctx, func(a *domain.Account) bool { return a.IsEmailVerified == verified })
}

func createdBetween(start, end time.Time) func(*domain.Account) bool {
	return func(a *domain.Account) bool {
		return !a.CreatedAt.Before(start) && !a.CreatedAt.After(end)
	}
}

// ListByCreatedBetween implements store.AccountStore.ListByCreatedBetween.
func (s *MemoryAccountStore) ListByCreatedBetween(ctx context.Context, start, end time.Time) ([]*domain.Account, error) {
	return s.filter(ctx, createdBetween(start, end))
}

// ListByNameExact implements store.AccountStore.ListByNameExact.
func (s *MemoryAccountStore) ListByNameExact(ctx context.Context, firstName, lastName string) ([]*domain.Account, error) {
	return s.filter(ctx, func(a *domain.Account) bool {
		return strings.EqualFold(a.FirstName, firstName) && strings.EqualFold(a.LastName, lastName)
	})
}

// SearchByNameOrHandle implements store.AccountStore.SearchByNameOrHandle.
func (s *MemoryAccountStore) SearchByNameOrHandle(ctx context.Context, term string, page store.PageRequest) (*store.AccountPage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	matches, err := s.filter(ctx, func(a *domain.Account) bool {
		return strings.Contains(strings.ToLower(a.FirstName), needle) ||
			strings.Contains(strings.ToLower(a.LastName), needle) ||
			strings.Contains(strings.ToLower(a.Handle), needle)
	})
	if err != nil {
		return nil, err
	}
	return paginate(matches, page, false), nil
}

// ListInactiveSince implements store.AccountStore.ListInactiveSince.
func (s *MemoryAccountStore) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	return s.filter(ctx, func(a *domain.Account) bool { return a.InactiveSince(cutoff) })
}

// Update implements store.AccountStore.Update.
// CreatedAt and LastLogin are owned by the store and copied back onto account.
func (s *MemoryAccountStore) Update(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		log.Warn("account validation failed during update",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID.String()))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[account.ID]
	if !ok {
		return store.ErrAccountNotFound
	}
	if id, taken := s.byHandle[account.Handle]; taken && id != account.ID {
		return store.ErrHandleExists
	}
	if id, taken := s.byEmail[emailKey(account.Email)]; taken && id != account.ID {
		return store.ErrEmailExists
	}

	delete(s.byHandle, current.Handle)
	delete(s.byEmail, emailKey(current.Email))

	account.CreatedAt = current.CreatedAt
	account.LastLogin = current.Clone().LastLogin
	account.UpdatedAt = s.touch(current)

	stored := account.Clone()
	s.accounts[stored.ID] = stored
	s.byHandle[stored.Handle] = stored.ID
	s.byEmail[emailKey(stored.Email)] = stored.ID

	log.Debug("account updated", slog.String("account_id", stored.ID.String()))
	return nil
}

// touch returns the new UpdatedAt for a, never earlier than its CreatedAt.
func (s *MemoryAccountStore) touch(a *domain.Account) time.Time {
	now := s.now()
	if now.Before(a.CreatedAt) {
		return a.CreatedAt
	}
	return now
}

// mutate applies fn to the stored account under the write lock.
func (s *MemoryAccountStore) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Account)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return store.ErrAccountNotFound
	}
	fn(a)
	return nil
}

// UpdateLastLogin implements store.AccountStore.UpdateLastLogin.
func (s *MemoryAccountStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.mutate(ctx, id, func(a *domain.Account) {
		t := at
		a.LastLogin = &t
		if at.Before(a.CreatedAt) {
			a.UpdatedAt = a.CreatedAt
		} else {
			a.UpdatedAt = at
		}
	})
}

// UpdateActiveFlag implements store.AccountStore.UpdateActiveFlag.
func (s *MemoryAccountStore) UpdateActiveFlag(ctx context.Context, id uuid.UUID, active bool) error {
	return s.mutate(ctx, id, func(a *domain.Account) {
		a.IsActive = active
		a.UpdatedAt = s.touch(a)
	})
}

// UpdateEmailVerified implements store.AccountStore.UpdateEmailVerified.
func (s *MemoryAccountStore) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return s.mutate(ctx, id, func(a *domain.Account) {
		a.IsEmailVerified = verified
		a.UpdatedAt = s.touch(a)
	})
}

// Count implements store.AccountStore.Count.
func (s *MemoryAccountStore) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, nil)
}

// CountActive implements store.AccountStore.CountActive.
func (s *MemoryAccountStore) CountActive(ctx context.Context) (int64, error) {
	return s.count(ctx, func(a *domain.Account) bool { return a.IsActive })
}

// CountByRole implements store.AccountStore.CountByRole.
func (s *MemoryAccountStore) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return s.count(ctx, func(a *domain.Account) bool { return a.Role == role })
}

// CountCreatedBetween implements store.AccountStore.CountCreatedBetween.
func (s *MemoryAccountStore) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	return s.count(ctx, createdBetween(start, end))
}

// DeleteByID implements store.AccountStore.DeleteByID.
func (s *MemoryAccountStore) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	delete(s.accounts, id)
	delete(s.byHandle, a.Handle)
	delete(s.byEmail, emailKey(a.Email))
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// RunInTx implements store.AccountStore.RunInTx.
// Transactions are serialized against each other. Writes made by fn are not
// undone when it fails, so callers should write last.
func (s *MemoryAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx, s)
}
