//go:build integration

package repositories

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a postgres container, applies the embedded migrations
// and returns a connected DB.
func setupPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("credguard"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	db := database.NewFromPool(pool, slog.Default())
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestPostgres_AccountLifecycle(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc, err := repo.Create(ctx, &models.Account{Email: "pg@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Account{Email: "pg@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	lockUntil := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Microsecond)
	updated, err := repo.UpdateAtomic(ctx, acc.ID, func(a *models.Account) error {
		a.FailedLoginAttempts = 5
		a.LockUntil = &lockUntil
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.FailedLoginAttempts)
	require.NotNil(t, updated.LockUntil)
	assert.True(t, lockUntil.Equal(*updated.LockUntil))

	abort := errors.New("abort")
	_, err = repo.UpdateAtomic(ctx, acc.ID, func(a *models.Account) error {
		a.FailedLoginAttempts = 0
		return abort
	})
	assert.ErrorIs(t, err, abort)

	reloaded, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.FailedLoginAttempts)
}

func TestPostgres_ConcurrentUpdatesSerialize(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc, err := repo.Create(ctx, &models.Account{Email: "race@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	const workers = 30
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateAtomic(ctx, acc.ID, func(a *models.Account) error {
				a.FailedLoginAttempts++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, reloaded.FailedLoginAttempts)
}

func TestPostgres_LoginEvents(t *testing.T) {
	db := setupPostgres(t)
	accounts := NewAccountRepository(db)
	events := NewLoginEventRepository(db)
	ctx := context.Background()

	acc, err := accounts.Create(ctx, &models.Account{Email: "events@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	base := time.Now().UTC().Add(-48 * time.Hour)
	for i := 0; i < 12; i++ {
		require.NoError(t, events.Append(ctx, &models.LoginEvent{
			AccountID:        acc.ID,
			OccurredAt:       base.Add(time.Duration(i) * time.Hour),
			SourceAddress:    "203.0.113.1",
			ClientDescriptor: "integration",
		}))
	}

	list, err := events.ListByAccount(ctx, acc.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.True(t, list[0].OccurredAt.After(list[1].OccurredAt))

	deleted, err := events.DeleteOlderThan(ctx, base.Add(5*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(6), deleted)
}
