package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/credguard/internal/background"
	"github.com/BradenHooton/credguard/internal/config"
	"github.com/BradenHooton/credguard/internal/database"
	"github.com/BradenHooton/credguard/internal/handlers"
	"github.com/BradenHooton/credguard/internal/repositories"
	"github.com/BradenHooton/credguard/internal/repositories/sqlite"
	"github.com/BradenHooton/credguard/internal/services"
)

// stores bundles the driver-specific repositories behind the service interfaces.
type stores struct {
	accounts services.AccountStore
	events   services.LoginEventStore
	pruner   background.LoginEventPruner
	pinger   handlers.Pinger
	close    func()
}

func openStores(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		events := sqlite.NewLoginEventRepository(db)
		return &stores{
			accounts: sqlite.NewAccountRepository(db),
			events:   events,
			pruner:   events,
			pinger:   db,
			close:    db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := database.NewConnection(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		events := repositories.NewLoginEventRepository(db)
		return &stores{
			accounts: repositories.NewAccountRepository(db),
			events:   events,
			pruner:   events,
			pinger:   db,
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
