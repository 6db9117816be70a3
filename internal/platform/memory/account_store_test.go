package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one second per call from start.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newAccount(t *testing.T, handle, email, first, last string) *domain.Account {
	t.Helper()
	a, err := domain.NewAccount(handle, email, domain.Profile{FirstName: first, LastName: last})
	require.NoError(t, err)
	a.CredentialHash = "hash:" + handle
	return a
}

func seed(t *testing.T, s *MemoryAccountStore, accounts ...*domain.Account) {
	t.Helper()
	for _, a := range accounts {
		require.NoError(t, s.Insert(context.Background(), a))
	}
}

func TestInsertAssignsIdentityAndTimestamps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryAccountStore(nil, WithClock(stepClock(start)))
	a := newAccount(t, "alice", "a@x.com", "Alice", "Liddell")

	require.NoError(t, s.Insert(context.Background(), a))

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, start.Add(time.Second), a.CreatedAt)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	found, err := s.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, found)
}

func TestInsertEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	seed(t, s, newAccount(t, "alice", "a@x.com", "", ""))

	err := s.Insert(ctx, newAccount(t, "alice", "other@x.com", "", ""))
	assert.ErrorIs(t, err, store.ErrHandleExists)

	err = s.Insert(ctx, newAccount(t, "bob", "A@X.COM", "", ""))
	assert.ErrorIs(t, err, store.ErrEmailExists)

	// Handles are case-sensitive.
	assert.NoError(t, s.Insert(ctx, newAccount(t, "Alice", "b@x.com", "", "")))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestInsertRejectsInvalidAccount(t *testing.T) {
	s := NewMemoryAccountStore(nil)
	a := newAccount(t, "alice", "a@x.com", "", "")
	a.CredentialHash = ""

	err := s.Insert(context.Background(), a)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConcurrentInsertsOfSameHandle(t *testing.T) {
	s := NewMemoryAccountStore(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := domain.NewAccount("racer", fmt.Sprintf("r%d@x.com", i), domain.Profile{})
			if err != nil {
				errs <- err
				return
			}
			a.CredentialHash = "hash"
			errs <- s.Insert(context.Background(), a)
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, store.ErrHandleExists)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	alice := newAccount(t, "alice", "a@x.com", "", "")
	seed(t, s, alice)

	got, err := s.FindByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.FindByHandle(ctx, "ALICE")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	got, err = s.FindByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = s.FindByHandleOrEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.FindByHandleOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	_, err = s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	exists, err := s.ExistsByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReturnedAccountsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	a := newAccount(t, "alice", "a@x.com", "", "")
	seed(t, s, a)

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	got.Role = domain.RoleAdmin

	again, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil, WithClock(stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	alice := newAccount(t, "alice", "a@x.com", "", "")
	bob := newAccount(t, "bob", "b@x.com", "", "")
	seed(t, s, alice, bob)

	alice.Email = "b@x.com"
	assert.ErrorIs(t, s.Update(ctx, alice), store.ErrEmailExists)

	alice.Email = "a@x.com"
	alice.Handle = "bob"
	assert.ErrorIs(t, s.Update(ctx, alice), store.ErrHandleExists)

	created := alice.CreatedAt
	alice.Handle = "alice"
	alice.Email = "new@x.com"
	alice.FirstName = "Al"
	require.NoError(t, s.Update(ctx, alice))
	assert.Equal(t, created, alice.CreatedAt)
	assert.True(t, alice.UpdatedAt.After(created))

	got, err := s.FindByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Al", got.FirstName)

	exists, err := s.ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, exists, "old email index entry should be released")

	missing := newAccount(t, "ghost", "g@x.com", "", "")
	missing.ID = uuid.New()
	assert.ErrorIs(t, s.Update(ctx, missing), store.ErrAccountNotFound)
}

func TestFieldUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	a := newAccount(t, "alice", "a@x.com", "", "")
	seed(t, s, a)

	require.NoError(t, s.UpdateActiveFlag(ctx, a.ID, false))
	require.NoError(t, s.UpdateEmailVerified(ctx, a.ID, true))
	at := time.Now().UTC()
	require.NoError(t, s.UpdateLastLogin(ctx, a.ID, at))

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsEmailVerified)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(at))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	missing := uuid.New()
	assert.ErrorIs(t, s.UpdateActiveFlag(ctx, missing, true), store.ErrAccountNotFound)
	assert.ErrorIs(t, s.UpdateEmailVerified(ctx, missing, true), store.ErrAccountNotFound)
	assert.ErrorIs(t, s.UpdateLastLogin(ctx, missing, at), store.ErrAccountNotFound)
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryAccountStore(nil, WithClock(stepClock(start)))

	alice := newAccount(t, "alice", "a@x.com", "Alice", "Smith")
	bob := newAccount(t, "bob", "b@x.com", "Bob", "Smithers")
	carol := newAccount(t, "carol", "c@x.com", "Carol", "Jones")
	seed(t, s, alice, bob, carol)

	carol.Role = domain.RoleAdmin
	require.NoError(t, s.Update(ctx, carol))
	require.NoError(t, s.UpdateActiveFlag(ctx, bob.ID, false))
	require.NoError(t, s.UpdateEmailVerified(ctx, carol.ID, true))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, handles(active))

	admins, err := s.ListByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, handles(admins))

	verified, err := s.ListByEmailVerified(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, handles(verified))

	byName, err := s.ListByNameExact(ctx, "alice", "SMITH")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, handles(byName))

	between, err := s.ListByCreatedBetween(ctx, alice.CreatedAt, bob.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, handles(between))

	n, err := s.CountCreatedBetween(ctx, bob.CreatedAt, bob.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountByRole(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSearchByNameOrHandle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	seed(t, s,
		newAccount(t, "alice", "a@x.com", "Alice", "Smith"),
		newAccount(t, "bob", "b@x.com", "Bob", "Smithers"),
		newAccount(t, "smithy", "s@x.com", "", ""),
		newAccount(t, "carol", "c@x.com", "Carol", "Jones"),
	)

	page, err := s.SearchByNameOrHandle(ctx, "SMITH", store.NewPageRequest(0, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"alice", "bob"}, handles(page.Items))

	page, err = s.SearchByNameOrHandle(ctx, "smith", store.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"smithy"}, handles(page.Items))

	page, err = s.SearchByNameOrHandle(ctx, "zzz", store.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListAllSortingAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil, WithClock(stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	carol := newAccount(t, "carol", "c@x.com", "", "")
	alice := newAccount(t, "alice", "a@x.com", "", "")
	bob := newAccount(t, "bob", "b@x.com", "", "")
	seed(t, s, carol, alice, bob)

	page, err := s.ListAll(ctx, store.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "alice", "carol"}, handles(page.Items), "default is newest first")

	page, err = s.ListAll(ctx, store.PageRequest{Index: 0, Size: 2, SortBy: store.SortByHandle})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, handles(page.Items))
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, s.UpdateLastLogin(ctx, alice.ID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	page, err = s.ListAll(ctx, store.PageRequest{Index: 0, Size: 10, SortBy: store.SortByLastLogin})
	require.NoError(t, err)
	assert.Equal(t, "alice", page.Items[0].Handle, "accounts without a login sort last ascending")

	page, err = s.ListAll(ctx, store.NewPageRequest(5, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.TotalElements)

	_, err = s.ListAll(ctx, store.NewPageRequest(0, 0))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListInactiveSince(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	never := newAccount(t, "never", "n@x.com", "", "")
	old := newAccount(t, "old", "o@x.com", "", "")
	recent := newAccount(t, "recent", "r@x.com", "", "")
	seed(t, s, never, old, recent)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, s.UpdateLastLogin(ctx, old.ID, cutoff.Add(-time.Hour)))
	require.NoError(t, s.UpdateLastLogin(ctx, recent.ID, cutoff.Add(time.Hour)))

	inactive, err := s.ListInactiveSince(ctx, cutoff)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"never", "old"}, handles(inactive))
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	a := newAccount(t, "alice", "a@x.com", "", "")
	seed(t, s, a)

	removed, err := s.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// Handle and email are free again.
	assert.NoError(t, s.Insert(ctx, newAccount(t, "alice", "a@x.com", "", "")))
}

func TestRunInTxSerializes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore(nil)
	a := newAccount(t, "counter", "c@x.com", "", "")
	seed(t, s, a)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
				cur, err := tx.FindByID(ctx, a.ID)
				if err != nil {
					return err
				}
				cur.FirstName += "x"
				return tx.Update(ctx, cur)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.FirstName, 20, "no lost updates")
}

func TestCanceledContext(t *testing.T) {
	s := NewMemoryAccountStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func handles(accounts []*domain.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Handle)
	}
	return out
}
