package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
)

// AttemptRecorder owns FailedLoginAttempts and LockUntil. Every write goes
// through AccountStore.UpdateAtomic so concurrent failures are never lost.
type AttemptRecorder struct {
	store  AccountStore
	policy GuardPolicy
	logger *slog.Logger
	now    func() time.Time
}

func NewAttemptRecorder(store AccountStore, policy GuardPolicy, logger *slog.Logger) *AttemptRecorder {
	return &AttemptRecorder{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// RecordSuccess clears the failure counter and any lock. Safe to repeat.
func (r *AttemptRecorder) RecordSuccess(ctx context.Context, accountID string) (*models.Account, error) {
	acc, err := r.store.UpdateAtomic(ctx, accountID, func(a *models.Account) error {
		a.FailedLoginAttempts = 0
		a.LockUntil = nil
		return nil
	})
	if err != nil {
		return nil, storageError("record success", err)
	}
	return acc, nil
}

// RecordFailure increments the counter read inside the atomic update and locks
// the account once it reaches MaxFailedAttempts.
func (r *AttemptRecorder) RecordFailure(ctx context.Context, accountID string) (*models.Account, error) {
	acc, err := r.store.UpdateAtomic(ctx, accountID, func(a *models.Account) error {
		a.FailedLoginAttempts++
		if a.FailedLoginAttempts >= r.policy.MaxFailedAttempts {
			lockUntil := r.now().UTC().Add(r.policy.LockoutDuration)
			a.LockUntil = &lockUntil
		} else {
			a.LockUntil = nil
		}
		return nil
	})
	if err != nil {
		return nil, storageError("record failure", err)
	}

	if acc.LockUntil != nil {
		r.logger.WarnContext(ctx, "account locked after repeated failures",
			slog.String("account_id", acc.ID),
			slog.Int("failed_attempts", acc.FailedLoginAttempts),
			slog.Time("lock_until", *acc.LockUntil))
	}
	return acc, nil
}
