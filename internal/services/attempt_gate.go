package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	pkgauth "github.com/BradenHooton/credguard/pkg/auth"
	"github.com/go-playground/validator/v10"
)

// errLocked aborts the atomic mutation so a locked account is not written.
var errLocked = errors.New("account locked")

var inputValidator = validator.New()

// AttemptGate decides the outcome of a single login attempt.
// Checks run in a fixed order: lock, then throttle, then password.
type AttemptGate struct {
	store    AccountStore
	recorder *AttemptRecorder
	policy   GuardPolicy
	logger   *slog.Logger
	now      func() time.Time
}

func NewAttemptGate(store AccountStore, recorder *AttemptRecorder, policy GuardPolicy, logger *slog.Logger) *AttemptGate {
	return &AttemptGate{
		store:    store,
		recorder: recorder,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeEmail applies the case policy used at signup and at login.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validLoginInput(email, password string) bool {
	if password == "" {
		return false
	}
	return inputValidator.Var(email, "required,email,max=254") == nil
}

// Evaluate runs the gate for one attempt. A non-nil error always wraps
// models.ErrStorage and carries no outcome.
func (g *AttemptGate) Evaluate(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = NormalizeEmail(email)
	if !validLoginInput(email, password) {
		return models.Rejected(), nil
	}

	acc, err := g.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkgauth.EqualizeTiming(password)
			return models.Rejected(), nil
		}
		return nil, storageError("find account", err)
	}

	throttled := false

	current, err := g.store.UpdateAtomic(ctx, acc.ID, func(a *models.Account) error {
		// Read the clock once the row is held so waiters never move the anchor back.
		now := g.now().UTC()
		if a.IsLocked(now) {
			return errLocked
		}
		throttled = a.IsThrottled(now, g.policy.MinAttemptInterval)
		a.LastLoginAttemptAt = &now
		return nil
	})
	switch {
	case errors.Is(err, errLocked):
		return models.Locked(), nil
	case errors.Is(err, models.ErrNotFound):
		// Deleted between lookup and update.
		pkgauth.EqualizeTiming(password)
		return models.Rejected(), nil
	case err != nil:
		return nil, storageError("register attempt", err)
	}

	if throttled {
		return models.Throttled(), nil
	}

	if err := pkgauth.VerifyPassword(current.PasswordHash, password); err != nil {
		if !errors.Is(err, pkgauth.ErrPasswordMismatch) {
			g.logger.ErrorContext(ctx, "stored password hash unusable",
				slog.String("account_id", current.ID),
				slog.Any("error", err))
		}
		if _, err := g.recorder.RecordFailure(ctx, current.ID); err != nil {
			return nil, err
		}
		return models.Rejected(), nil
	}

	if _, err := g.recorder.RecordSuccess(ctx, current.ID); err != nil {
		return nil, err
	}
	result := models.Authenticated(current.ID)
	result.Email = current.Email
	return result, nil
}
