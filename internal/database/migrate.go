package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/credguard/migrations"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies the embedded migrations for dialect ("postgres" or "sqlite3").
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("unsupported migration dialect %q: %w", dialect, err)
	}

	dir := migrations.Dir(dialect)
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Migrate runs the postgres migrations over the pool through the pgx stdlib adapter.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := Migrate(ctx, sqlDB, "postgres"); err != nil {
		return err
	}
	db.logger.Info("migrations applied", slog.String("dialect", "postgres"))
	return nil
}

func (db *SQLiteDB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, db.Conn, "sqlite3"); err != nil {
		return err
	}
	db.logger.Info("migrations applied", slog.String("dialect", "sqlite3"))
	return nil
}
