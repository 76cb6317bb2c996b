package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/BradenHooton/credguard/internal/config"
	"github.com/BradenHooton/credguard/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const usage = `usage: migrator [up|down|status|version]

Applies the embedded schema migrations to the database selected by DB_DRIVER.`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, dialect, err := open(&cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := run(context.Background(), db, dialect, command); err != nil {
		logger.Error("migration command failed",
			slog.String("command", command),
			slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("migration command completed", slog.String("command", command), slog.String("dialect", dialect))
}

func open(cfg *config.DatabaseConfig) (*sql.DB, string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		return db, "sqlite3", err
	default:
		db, err := sql.Open("postgres", cfg.DSN())
		return db, "postgres", err
	}
}

func run(ctx context.Context, db *sql.DB, dialect, command string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	dir := migrations.Dir(dialect)
	switch command {
	case "up":
		return goose.UpContext(ctx, db, dir)
	case "down":
		return goose.DownContext(ctx, db, dir)
	case "status":
		return goose.StatusContext(ctx, db, dir)
	case "version":
		return goose.VersionContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
