package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteDB is the single-node store. Transactions are opened with BEGIN IMMEDIATE
// so the write lock is taken before the account row is read.
type SQLiteDB struct {
	Conn   *sql.DB
	logger *slog.Logger
}

// sqliteDSN builds a modernc DSN with the pragmas the repositories rely on.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_time_format", "sqlite")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	if path != ":memory:" && !strings.HasPrefix(path, "file::memory:") {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func NewSQLiteConnection(path string, logger *slog.Logger) (*SQLiteDB, error) {
	conn, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	// A single connection keeps in-memory databases shared and serialises writers.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping sqlite database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("driver", "sqlite"),
		slog.String("path", path),
	)

	return &SQLiteDB{Conn: conn, logger: logger}, nil
}

func (db *SQLiteDB) Close() {
	db.logger.Info("closing sqlite database")
	_ = db.Conn.Close()
}

func (db *SQLiteDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// WithTransaction mirrors DB.WithTransaction for database/sql.
func (db *SQLiteDB) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return MapSQLiteError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if cerr := tx.Commit(); cerr != nil {
			err = MapSQLiteError(cerr)
		}
	}()

	err = fn(tx)
	return err
}

// MapSQLiteError translates database/sql and sqlite errors into model sentinels.
func MapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return models.ErrConflict
	}
	return fmt.Errorf("%w: %w", models.ErrStorage, err)
}
