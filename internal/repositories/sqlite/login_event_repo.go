package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
)

type LoginEventRepository struct {
	db *database.SQLiteDB
}

func NewLoginEventRepository(db *database.SQLiteDB) *LoginEventRepository {
	return &LoginEventRepository{db: db}
}

func (r *LoginEventRepository) Append(ctx context.Context, ev *models.LoginEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	ev.OccurredAt = ev.OccurredAt.UTC()

	query := `
		INSERT INTO login_events (id, account_id, occurred_at, source_address, client_descriptor)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Conn.ExecContext(ctx, query,
		ev.ID.String(), ev.AccountID, ev.OccurredAt, ev.SourceAddress, ev.ClientDescriptor,
	)
	return database.MapSQLiteError(err)
}

// ListByAccount returns the most recent events for an account, newest first.
// Timestamps are stored in UTC so the text ordering matches time ordering.
func (r *LoginEventRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error) {
	query := `
		SELECT id, account_id, occurred_at, source_address, client_descriptor
		FROM login_events
		WHERE account_id = ?
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Conn.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	return scanLoginEventRows(rows)
}

func scanLoginEventRows(rows *sql.Rows) ([]*models.LoginEvent, error) {
	defer rows.Close()

	events := make([]*models.LoginEvent, 0)

	for rows.Next() {
		var ev models.LoginEvent
		var id string
		if err := rows.Scan(&id, &ev.AccountID, &ev.OccurredAt, &ev.SourceAddress, &ev.ClientDescriptor); err != nil {
			return nil, fmt.Errorf("failed to scan login event: %w", database.MapSQLiteError(err))
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed login event id %q", models.ErrStorage, id)
		}
		ev.ID = parsed
		ev.OccurredAt = ev.OccurredAt.UTC()
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, database.MapSQLiteError(err)
	}

	return events, nil
}

func (r *LoginEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Conn.ExecContext(ctx, `DELETE FROM login_events WHERE occurred_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, database.MapSQLiteError(err)
	}

	return result.RowsAffected()
}
