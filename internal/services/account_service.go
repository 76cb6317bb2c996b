package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/credguard/internal/models"
	pkgauth "github.com/BradenHooton/credguard/pkg/auth"
	pkglogger "github.com/BradenHooton/credguard/pkg/logger"
)

// LoginHistoryLimit is the number of events returned by LoginHistory.
const LoginHistoryLimit = 10

// AccountService handles signup and login history reads.
type AccountService struct {
	accounts    AccountStore
	events      LoginEventStore
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	hashCost    int
}

func NewAccountService(accounts AccountStore, events LoginEventStore, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AccountService {
	return &AccountService{
		accounts:    accounts,
		events:      events,
		logger:      logger,
		auditLogger: auditLogger,
		hashCost:    pkgauth.BcryptCost,
	}
}

// Register creates an account with zero counters. A taken email returns
// models.ErrConflict; a policy violation returns *pkgauth.PasswordValidationError.
func (s *AccountService) Register(ctx context.Context, email, password, sourceAddress string) (*models.Account, error) {
	email = NormalizeEmail(email)
	if err := inputValidator.Var(email, "required,email,max=254"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", models.ErrBadRequest)
	}
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPasswordWithCost(password, s.hashCost)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.Create(ctx, &models.Account{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.InfoContext(ctx, "registration for existing email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil, models.ErrConflict
		}
		return nil, storageError("create account", err)
	}

	s.auditLogger.LogAccountAction(ctx, "account_registered", acc.ID, sourceAddress)
	return acc, nil
}

// LoginHistory returns the most recent login events of accountID, newest first.
func (s *AccountService) LoginHistory(ctx context.Context, accountID string) ([]*models.LoginEvent, error) {
	events, err := s.events.ListByAccount(ctx, accountID, LoginHistoryLimit)
	if err != nil {
		return nil, storageError("list login events", err)
	}
	return events, nil
}
