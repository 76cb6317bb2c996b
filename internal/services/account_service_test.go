package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	pkgauth "github.com/BradenHooton/credguard/pkg/auth"
	pkglogger "github.com/BradenHooton/credguard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAccountService(accounts AccountStore, events LoginEventStore) *AccountService {
	logger := discardLogger()
	svc := NewAccountService(accounts, events, logger, pkglogger.NewAuditLogger(logger))
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestAccountService_Register(t *testing.T) {
	accounts := NewMemoryAccountStore()
	svc := newTestAccountService(accounts, &MemoryLoginEventStore{})

	acc, err := svc.Register(context.Background(), " New.User@Example.com ", testPassword, "203.0.113.1")
	require.NoError(t, err)

	assert.Equal(t, "new.user@example.com", acc.Email)
	assert.Equal(t, 0, acc.FailedLoginAttempts)
	assert.Nil(t, acc.LockUntil)
	assert.NoError(t, pkgauth.VerifyPassword(acc.PasswordHash, testPassword))
	assert.NotEqual(t, testPassword, acc.PasswordHash)
}

func TestAccountService_RegisterThenAuthenticate(t *testing.T) {
	f := newGuardFixture(t, DefaultGuardPolicy())
	svc := newTestAccountService(f.accounts, f.events)

	acc, err := svc.Register(context.Background(), testEmail, testPassword, "")
	require.NoError(t, err)

	result := f.attempt(t, testPassword)
	assert.Equal(t, models.OutcomeAuthenticated, result.Outcome)
	assert.Equal(t, acc.ID, result.AccountID)
}

func TestAccountService_RegisterDuplicate(t *testing.T) {
	svc := newTestAccountService(NewMemoryAccountStore(), &MemoryLoginEventStore{})

	_, err := svc.Register(context.Background(), testEmail, testPassword, "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "USER@example.com", testPassword, "")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	svc := newTestAccountService(NewMemoryAccountStore(), &MemoryLoginEventStore{})

	_, err := svc.Register(context.Background(), "not-an-email", testPassword, "")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.Register(context.Background(), testEmail, "short", "")
	var pwErr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &pwErr)
}

func TestAccountService_RegisterStorageError(t *testing.T) {
	svc := newTestAccountService(&MockAccountStore{
		CreateFunc: func(ctx context.Context, acc *models.Account) (*models.Account, error) {
			return nil, errors.New("connection refused")
		},
	}, &MemoryLoginEventStore{})

	_, err := svc.Register(context.Background(), testEmail, testPassword, "")
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestAccountService_LoginHistoryNewestFirst(t *testing.T) {
	events := &MemoryLoginEventStore{}
	svc := newTestAccountService(NewMemoryAccountStore(), events)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		require.NoError(t, events.Append(context.Background(), &models.LoginEvent{
			AccountID:  "acc-1",
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, events.Append(context.Background(), &models.LoginEvent{AccountID: "acc-2", OccurredAt: base}))

	list, err := svc.LoginHistory(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, list, LoginHistoryLimit)
	assert.Equal(t, base.Add(11*time.Hour), list[0].OccurredAt)
	assert.Equal(t, base.Add(2*time.Hour), list[LoginHistoryLimit-1].OccurredAt)
}

func TestAccountService_LoginHistoryStorageError(t *testing.T) {
	svc := newTestAccountService(NewMemoryAccountStore(), &MockLoginEventStore{
		ListByAccountFunc: func(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error) {
			assert.Equal(t, LoginHistoryLimit, limit)
			return nil, errors.New("timeout")
		},
	})

	_, err := svc.LoginHistory(context.Background(), "acc-1")
	assert.ErrorIs(t, err, models.ErrStorage)
}
