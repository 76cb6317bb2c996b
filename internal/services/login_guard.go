package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	pkglogger "github.com/BradenHooton/credguard/pkg/logger"
)

// LoginGuard is the entry point for credential attempts: the gate decides,
// the auditor records successes, and every outcome is logged.
type LoginGuard struct {
	gate        *AttemptGate
	auditor     *LoginAuditor
	auditLogger *pkglogger.AuditLogger
	logger      *slog.Logger
}

func NewLoginGuard(gate *AttemptGate, auditor *LoginAuditor, auditLogger *pkglogger.AuditLogger, logger *slog.Logger) *LoginGuard {
	return &LoginGuard{
		gate:        gate,
		auditor:     auditor,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Authenticate evaluates one attempt. On error there is no outcome and no
// login event is written.
func (g *LoginGuard) Authenticate(ctx context.Context, email, password, sourceAddress, clientDescriptor string) (*models.AuthResult, error) {
	start := time.Now()

	result, err := g.gate.Evaluate(ctx, email, password)
	if err != nil {
		g.logger.ErrorContext(ctx, "login attempt failed on storage",
			slog.String("email", pkglogger.SanitizedEmail(NormalizeEmail(email))),
			slog.Any("error", err))
		return nil, err
	}

	if result.Outcome == models.OutcomeAuthenticated {
		g.auditor.Record(ctx, result.AccountID, sourceAddress, clientDescriptor)
	}

	g.auditLogger.LogLoginOutcome(ctx, pkglogger.LoginOutcomeEvent{
		Outcome:       result.Outcome.String(),
		AccountID:     result.AccountID,
		MaskedEmail:   pkglogger.SanitizedEmail(NormalizeEmail(email)),
		SourceAddress: sourceAddress,
		Client:        clientDescriptor,
		Duration:      time.Since(start),
	})

	return result, nil
}
