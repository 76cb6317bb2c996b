package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
)

// AccountStore is the account persistence the guard needs. UpdateAtomic must
// apply mutate and persist the result as one isolated step per account; if
// mutate returns an error nothing is written and that error is returned as is.
type AccountStore interface {
	Create(ctx context.Context, acc *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAtomic(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error)
}

// LoginEventStore is the append-only login history.
type LoginEventStore interface {
	Append(ctx context.Context, ev *models.LoginEvent) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error)
}

// GuardPolicy holds the lockout and throttle parameters.
type GuardPolicy struct {
	MaxFailedAttempts  int
	LockoutDuration    time.Duration
	MinAttemptInterval time.Duration
}

// DefaultGuardPolicy mirrors the config defaults.
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{
		MaxFailedAttempts:  5,
		LockoutDuration:    15 * time.Minute,
		MinAttemptInterval: 2 * time.Second,
	}
}

// storageError tags err as a store failure unless it already is one.
func storageError(op string, err error) error {
	if errors.Is(err, models.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
}
