package logger

import (
	"context"
	"log/slog"
	"time"
)

// LoginOutcomeEvent is the telemetry record for one credential attempt.
// Email must already be masked by the caller.
type LoginOutcomeEvent struct {
	Outcome       string
	AccountID     string
	MaskedEmail   string
	SourceAddress string
	Client        string
	Duration      time.Duration
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogLoginOutcome logs one login decision. Only "authenticated" logs at info.
func (al *AuditLogger) LogLoginOutcome(ctx context.Context, event LoginOutcomeEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", "login"),
		slog.String("outcome", event.Outcome),
		slog.String("email", event.MaskedEmail),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", event.AccountID))
	}
	if event.SourceAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.SourceAddress))
	}
	if event.Client != "" {
		attrs = append(attrs, slog.String("user_agent", event.Client))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Int64("duration_ms", event.Duration.Milliseconds()))
	}

	level := slog.LevelWarn
	if event.Outcome == "authenticated" {
		level = slog.LevelInfo
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogAccountAction logs general account actions
func (al *AuditLogger) LogAccountAction(ctx context.Context, eventType, accountID, ipAddress string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if accountID != "" {
		attrs = append(attrs, slog.String("account_id", accountID))
	}
	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}

	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}
