// Package sqlite holds the single-node store implementations on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
)

const accountColumns = `id, email, password_hash, failed_login_attempts, lock_until, last_login_attempt_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// AccountRepository is the sqlite-backed account store
type AccountRepository struct {
	db *database.SQLiteDB
}

func NewAccountRepository(db *database.SQLiteDB) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var acc models.Account
	var lockUntil, lastAttempt sql.NullTime

	err := scanner.Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash, &acc.FailedLoginAttempts,
		&lockUntil, &lastAttempt,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	acc.LockUntil = timePtr(lockUntil)
	acc.LastLoginAttemptAt = timePtr(lastAttempt)
	return &acc, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	acc.ID = uuid.New().String()

	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	acc.FailedLoginAttempts = 0
	acc.LockUntil = nil
	acc.LastLoginAttemptAt = nil

	query := `
		INSERT INTO accounts (id, email, password_hash, failed_login_attempts, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`

	_, err := r.db.Conn.ExecContext(ctx, query, acc.ID, acc.Email, acc.PasswordHash, acc.CreatedAt, acc.UpdatedAt)
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	return acc.Clone(), nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return scanAccountRow(r.db.Conn.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return scanAccountRow(r.db.Conn.QueryRowContext(ctx, query, email))
}

// UpdateAtomic reads, mutates and writes back the account inside an immediate
// transaction, so the database write lock is held across the read-modify-write.
func (r *AccountRepository) UpdateAtomic(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	selectQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	updateQuery := `
		UPDATE accounts
		SET failed_login_attempts = ?, lock_until = ?, last_login_attempt_at = ?, updated_at = ?
		WHERE id = ?
	`

	var updated *models.Account
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := scanAccountRow(tx.QueryRowContext(ctx, selectQuery, id))
		if err != nil {
			return err
		}

		if err := mutate(current); err != nil {
			return err
		}

		current.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, updateQuery,
			current.FailedLoginAttempts, nullTime(current.LockUntil), nullTime(current.LastLoginAttemptAt),
			current.UpdatedAt, id,
		)
		if err != nil {
			return database.MapSQLiteError(err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
