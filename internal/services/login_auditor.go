package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
)

// LoginAuditor appends a LoginEvent for each successful authentication.
// Failures are logged and swallowed: an audit write never changes the outcome.
type LoginAuditor struct {
	store  LoginEventStore
	logger *slog.Logger
	async  bool
	now    func() time.Time

	wg sync.WaitGroup
}

func NewLoginAuditor(store LoginEventStore, logger *slog.Logger, async bool) *LoginAuditor {
	return &LoginAuditor{
		store:  store,
		logger: logger,
		async:  async,
		now:    time.Now,
	}
}

// Record writes one event for accountID. Empty origin fields become "unknown".
// In async mode the write is detached from ctx cancellation and Close waits for it.
func (a *LoginAuditor) Record(ctx context.Context, accountID, sourceAddress, clientDescriptor string) {
	ev := &models.LoginEvent{
		ID:               uuid.New(),
		AccountID:        accountID,
		OccurredAt:       a.now().UTC(),
		SourceAddress:    orUnknown(sourceAddress),
		ClientDescriptor: orUnknown(clientDescriptor),
	}

	if !a.async {
		a.append(ctx, ev)
		return
	}

	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.append(detached, ev)
	}()
}

func (a *LoginAuditor) append(ctx context.Context, ev *models.LoginEvent) {
	if err := a.store.Append(ctx, ev); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist login event",
			slog.String("account_id", ev.AccountID),
			slog.String("event_id", ev.ID.String()),
			slog.Any("error", err))
	}
}

// Close blocks until pending async writes finish.
func (a *LoginAuditor) Close() {
	a.wg.Wait()
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownOrigin
	}
	return s
}
