package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/credguard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError translates driver errors into model sentinels. Anything it does
// not recognise is wrapped as a storage failure.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return models.ErrConflict
		case "23503", "23502": // foreign_key_violation, not_null_violation
			return fmt.Errorf("%w: %w", models.ErrStorage, models.ErrBadRequest)
		}
	}

	return fmt.Errorf("%w: %w", models.ErrStorage, err)
}

// WithTransaction runs fn in a transaction, committing on nil and rolling back otherwise.
// The error returned by fn is passed through unchanged.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return MapPostgresError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else if cerr := tx.Commit(ctx); cerr != nil {
			err = MapPostgresError(cerr)
		}
	}()

	err = fn(tx)
	return err
}
