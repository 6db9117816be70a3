package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/account-service/internal/config"
	"github.com/phrazzld/account-service/internal/platform/memory"
	"github.com/phrazzld/account-service/internal/platform/postgres"
	"github.com/phrazzld/account-service/internal/store"
)

const pingTimeout = 5 * time.Second

// openDatabase opens a pgx-backed pool sized from cfg and verifies it with a ping.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	configurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
}

// openStore builds the account store for the configured driver. The returned
// *sql.DB is nil for the memory driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (store.AccountStore, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory account store, data is lost on restart")
		return memory.NewMemoryAccountStore(log), nil, nil
	case config.DriverPostgres:
		db, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, "up", log); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewPostgresAccountStore(db, log), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
