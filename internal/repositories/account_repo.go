package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, email, password_hash, failed_login_attempts, lock_until, last_login_attempt_at, created_at, updated_at`

// AccountRepository is the postgres-backed account store.
type AccountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var acc models.Account

	err := scanner.Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash, &acc.FailedLoginAttempts,
		&acc.LockUntil, &acc.LastLoginAttemptAt,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &acc, nil
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
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING ` + accountColumns

	return scanAccountRow(r.db.Pool.QueryRow(ctx, query,
		acc.ID, acc.Email, acc.PasswordHash, acc.CreatedAt, acc.UpdatedAt,
	))
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccountRow(r.db.Pool.QueryRow(ctx, query, email))
}

// UpdateAtomic locks the account row, applies mutate to a fresh copy and writes back
// the attempt-tracking columns, all in one transaction. If mutate returns an error
// nothing is written and that error is returned as is.
func (r *AccountRepository) UpdateAtomic(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	selectQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	updateQuery := `
		UPDATE accounts
		SET failed_login_attempts = $1, lock_until = $2, last_login_attempt_at = $3, updated_at = $4
		WHERE id = $5
		RETURNING ` + accountColumns

	var updated *models.Account
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := scanAccountRow(tx.QueryRow(ctx, selectQuery, id))
		if err != nil {
			return err
		}

		if err := mutate(current); err != nil {
			return err
		}

		current.UpdatedAt = time.Now().UTC()
		updated, err = scanAccountRow(tx.QueryRow(ctx, updateQuery,
			current.FailedLoginAttempts, current.LockUntil, current.LastLoginAttemptAt,
			current.UpdatedAt, id,
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
