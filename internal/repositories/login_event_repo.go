package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoginEventRepository handles the append-only login history
type LoginEventRepository struct {
	db *database.DB
}

func NewLoginEventRepository(db *database.DB) *LoginEventRepository {
	return &LoginEventRepository{db: db}
}

func scanLoginEventRow(row rowScanner) (*models.LoginEvent, error) {
	var ev models.LoginEvent

	err := row.Scan(&ev.ID, &ev.AccountID, &ev.OccurredAt, &ev.SourceAddress, &ev.ClientDescriptor)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &ev, nil
}

func scanLoginEventRows(rows pgx.Rows) ([]*models.LoginEvent, error) {
	defer rows.Close()

	events := make([]*models.LoginEvent, 0)

	for rows.Next() {
		ev, err := scanLoginEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan login event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return events, nil
}

// Append inserts one login event. ID and OccurredAt are filled in when zero.
func (r *LoginEventRepository) Append(ctx context.Context, ev *models.LoginEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO login_events (id, account_id, occurred_at, source_address, client_descriptor)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		ev.ID, ev.AccountID, ev.OccurredAt, ev.SourceAddress, ev.ClientDescriptor,
	)
	return database.MapPostgresError(err)
}

// ListByAccount returns the most recent events for an account, newest first
func (r *LoginEventRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error) {
	query := `
		SELECT id, account_id, occurred_at, source_address, client_descriptor
		FROM login_events
		WHERE account_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return scanLoginEventRows(rows)
}

// DeleteOlderThan prunes events recorded before cutoff
func (r *LoginEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM login_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
