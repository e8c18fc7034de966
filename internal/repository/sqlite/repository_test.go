package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/auth-service/internal/model"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, repo *UserRepository, email string) model.User {
	t.Helper()
	user, err := repo.Create(context.Background(), model.User{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleCustomer,
	})
	require.NoError(t, err)
	return user
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	users := NewUserRepository(db)
	tenants := NewTenantRepository(db)

	tenant, err := tenants.Create(ctx, model.Tenant{Name: "Pizza Hub", Address: "Main st 1"})
	require.NoError(t, err)

	user := createUser(t, users, "jane@example.com")
	assert.NotZero(t, user.ID)
	assert.Nil(t, user.TenantID)

	_, err = users.Create(ctx, model.User{Email: "jane@example.com", PasswordHash: "x", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, model.ErrConflict)

	user.Role = model.RoleManager
	user.TenantID = &tenant.ID
	updated, err := users.Update(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)
	require.NotNil(t, updated.TenantID)
	assert.Equal(t, tenant.ID, *updated.TenantID)

	require.NoError(t, tenants.Delete(ctx, tenant.ID))
	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TenantID, "tenant removal detaches its users")

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = users.Update(ctx, model.User{ID: 999, Role: model.RoleCustomer})
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, users.Delete(ctx, user.ID))
	assert.ErrorIs(t, users.Delete(ctx, user.ID), model.ErrNotFound)
	_, err = users.GetByEmail(ctx, "jane@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTenantRepository(t *testing.T) {
	ctx := context.Background()
	tenants := NewTenantRepository(openMemory(t))

	list, err := tenants.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := tenants.Create(ctx, model.Tenant{Name: "A", Address: "1"})
	require.NoError(t, err)

	created.Name = "B"
	updated, err := tenants.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)

	got, err := tenants.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = tenants.GetByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	users := NewUserRepository(db)
	tokens := NewRefreshTokenRepository(db)

	owner := createUser(t, users, "owner@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	rec, err := tokens.Save(ctx, owner.ID, now.Add(model.RefreshTokenTTL))
	require.NoError(t, err)

	got, err := tokens.FindOne(ctx, rec.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, now.Add(model.RefreshTokenTTL).Equal(got.ExpiresAt))

	_, err = tokens.FindOne(ctx, rec.ID, owner.ID+1)
	assert.ErrorIs(t, err, model.ErrNotFound, "lookup is scoped to the owner")

	rotated, err := tokens.Rotate(ctx, rec.ID, owner.ID, now, now.Add(model.RefreshTokenTTL))
	require.NoError(t, err)
	assert.Greater(t, rotated.ID, rec.ID)

	_, err = tokens.Rotate(ctx, rec.ID, owner.ID, now, now.Add(model.RefreshTokenTTL))
	assert.ErrorIs(t, err, model.ErrNotFound, "a rotated record cannot be rotated again")

	require.NoError(t, tokens.Delete(ctx, rotated.ID))
	require.NoError(t, tokens.Delete(ctx, rotated.ID))

	again, err := tokens.Save(ctx, owner.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Greater(t, again.ID, rotated.ID, "deleted ids are not reused")
}

func TestRefreshTokenRepository_RotateExpired(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	owner := createUser(t, NewUserRepository(db), "exp@example.com")
	tokens := NewRefreshTokenRepository(db)

	now := time.Now().UTC()
	rec, err := tokens.Save(ctx, owner.ID, now.Add(-time.Second))
	require.NoError(t, err)

	_, err = tokens.Rotate(ctx, rec.ID, owner.ID, now, now.Add(model.RefreshTokenTTL))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenRepository_ConcurrentRotate(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	owner := createUser(t, NewUserRepository(db), "race@example.com")
	tokens := NewRefreshTokenRepository(db)

	now := time.Now().UTC()
	rec, err := tokens.Save(ctx, owner.ID, now.Add(time.Hour))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tokens.Rotate(ctx, rec.ID, owner.ID, now, now.Add(time.Hour)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRefreshTokenRepository_DeleteExpiredAndCascade(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	users := NewUserRepository(db)
	tokens := NewRefreshTokenRepository(db)

	owner := createUser(t, users, "sweep@example.com")
	now := time.Now().UTC()

	expired, err := tokens.Save(ctx, owner.ID, now)
	require.NoError(t, err)
	live, err := tokens.Save(ctx, owner.ID, now.Add(time.Hour))
	require.NoError(t, err)

	n, err := tokens.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = tokens.FindOne(ctx, expired.ID, owner.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, users.Delete(ctx, owner.ID))
	_, err = tokens.FindOne(ctx, live.ID, owner.ID)
	assert.ErrorIs(t, err, model.ErrNotFound, "user removal cascades to refresh tokens")
}
