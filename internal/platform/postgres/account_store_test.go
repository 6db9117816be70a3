package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/platform/postgres"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertAccount(t *testing.T, s store.AccountStore, handle, email, first, last string) *domain.Account {
	t.Helper()
	a, err := domain.NewAccount(handle, email, domain.Profile{FirstName: first, LastName: last})
	require.NoError(t, err)
	a.CredentialHash = "$2a$04$placeholderhashvalue"
	require.NoError(t, s.Insert(context.Background(), a))
	return a
}

func TestPostgresAccountStore_InsertAndFind(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)

	a := insertAccount(t, s, "alice", "a@x.com", "Alice", "Liddell")
	assert.NotEqual(t, uuid.Nil, a.ID)

	byID, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Handle, byID.Handle)
	assert.True(t, a.CreatedAt.Equal(byID.CreatedAt))
	assert.True(t, byID.IsActive)
	assert.False(t, byID.IsEmailVerified)
	assert.Equal(t, domain.RoleUser, byID.Role)

	byEmail, err := s.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	either, err := s.FindByHandleOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, either.ID)

	_, err = s.FindByHandle(ctx, "Alice")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestPostgresAccountStore_Uniqueness(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)
	insertAccount(t, s, "alice", "a@x.com", "", "")

	dupHandle, _ := domain.NewAccount("alice", "other@x.com", domain.Profile{})
	dupHandle.CredentialHash = "hash"
	assert.ErrorIs(t, s.Insert(ctx, dupHandle), store.ErrHandleExists)

	dupEmail, _ := domain.NewAccount("bob", "a@x.com", domain.Profile{})
	dupEmail.CredentialHash = "hash"
	assert.ErrorIs(t, s.Insert(ctx, dupEmail), store.ErrEmailExists)

	// Bypass normalization to prove the index itself is case-insensitive.
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (handle, email, credential_hash) VALUES ('carol', 'A@X.com', 'hash')`)
	assert.ErrorIs(t, postgres.MapError(err), store.ErrEmailExists)
}

func TestPostgresAccountStore_ConcurrentRegistration(t *testing.T) {
	db := requireDB(t)
	s := postgres.NewPostgresAccountStore(db, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, duplicates := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, _ := domain.NewAccount("racer", uuid.NewString()+"@x.com", domain.Profile{})
			a.CredentialHash = "hash"
			err := s.Insert(context.Background(), a)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, store.ErrHandleExists):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 7, duplicates)
}

func TestPostgresAccountStore_UpdateAndFlags(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)
	a := insertAccount(t, s, "alice", "a@x.com", "", "")
	insertAccount(t, s, "bob", "b@x.com", "", "")

	a.Email = "b@x.com"
	assert.ErrorIs(t, s.Update(ctx, a), store.ErrEmailExists)

	a.Email = "new@x.com"
	a.Role = domain.RoleManager
	require.NoError(t, s.Update(ctx, a))
	assert.False(t, a.UpdatedAt.Before(a.CreatedAt))

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.UpdateLastLogin(ctx, a.ID, at))
	require.NoError(t, s.UpdateActiveFlag(ctx, a.ID, false))
	require.NoError(t, s.UpdateEmailVerified(ctx, a.ID, true))

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", got.Email)
	assert.Equal(t, domain.RoleManager, got.Role)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsEmailVerified)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(at))

	assert.ErrorIs(t, s.UpdateActiveFlag(ctx, uuid.New(), true), store.ErrAccountNotFound)
}

func TestPostgresAccountStore_ListingsAndCounts(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)

	alice := insertAccount(t, s, "alice", "a@x.com", "Alice", "Smith")
	bob := insertAccount(t, s, "bob", "b@x.com", "Bob", "Smithers")
	insertAccount(t, s, "carol", "c@x.com", "Carol", "Jones")
	require.NoError(t, s.UpdateActiveFlag(ctx, bob.ID, false))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	page, err := s.SearchByNameOrHandle(ctx, "smith", store.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice", page.Items[0].Handle)

	byName, err := s.ListByNameExact(ctx, "ALICE", "smith")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, alice.ID, byName[0].ID)

	all, err := s.ListAll(ctx, store.PageRequest{Index: 0, Size: 2, SortBy: store.SortByHandle})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalPages)
	assert.Equal(t, "alice", all.Items[0].Handle)
	assert.Equal(t, "bob", all.Items[1].Handle)

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	users, err := s.CountByRole(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(3), users)

	inactive, err := s.ListInactiveSince(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, inactive, 3)

	created, err := s.CountCreatedBetween(ctx, alice.CreatedAt, alice.CreatedAt)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, created, int64(1))
}

func TestPostgresAccountStore_RunInTxRollsBack(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)
	a := insertAccount(t, s, "alice", "a@x.com", "", "")

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		if err := tx.UpdateActiveFlag(ctx, a.ID, false); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "update inside failed transaction must be rolled back")
}

func TestPostgresAccountStore_Delete(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	s := postgres.NewPostgresAccountStore(db, nil)
	a := insertAccount(t, s, "alice", "a@x.com", "", "")

	removed, err := s.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	removed, err = s.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
