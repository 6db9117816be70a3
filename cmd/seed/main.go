// Package main seeds a development database with an administrator and a few
// sample accounts. Accounts whose handle or email already exist are skipped,
// so the command can be run repeatedly.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/phrazzld/account-service/internal/config"
	"github.com/phrazzld/account-service/internal/platform/logger"
	"github.com/phrazzld/account-service/internal/platform/postgres"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/service/auth"
)

func main() {
	adminHandle := flag.String("admin-handle", "admin", "handle of the seeded administrator")
	adminEmail := flag.String("admin-email", "admin@example.com", "email of the seeded administrator")
	adminSecret := flag.String("admin-secret", os.Getenv("ACCOUNTS_SEED_ADMIN_SECRET"),
		"secret of the seeded administrator (defaults to $ACCOUNTS_SEED_ADMIN_SECRET)")
	withSamples := flag.Bool("samples", true, "also seed sample user accounts")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("seed: failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("seed: failed to load configuration: %v", err)
	}
	appLogger, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("seed: failed to set up logger: %v", err)
	}
	defer func() { _ = closer.Close() }()

	plan := Plan{
		Admin: service.RegisterInput{
			Handle:    *adminHandle,
			Email:     *adminEmail,
			Secret:    *adminSecret,
			FirstName: "Admin",
			LastName:  "User",
		},
	}
	if *withSamples {
		plan.Users = SampleUsers()
	}

	if err := run(context.Background(), cfg, plan, appLogger); err != nil {
		appLogger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, plan Plan, log *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("seeding requires the %s driver", config.DriverPostgres)
	}
	if plan.Admin.Secret == "" {
		return errors.New("admin secret is required: pass -admin-secret or set ACCOUNTS_SEED_ADMIN_SECRET")
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			return err
		}
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err != nil {
		return err
	}
	svc, err := service.NewAccountService(postgres.NewPostgresAccountStore(db, log), hasher, log)
	if err != nil {
		return err
	}

	log.Warn("seeding development database")
	result, err := Seed(ctx, svc, plan, log)
	if err != nil {
		return err
	}
	log.Info("seeding finished", slog.Int("created", result.Created), slog.Int("skipped", result.Skipped))
	return nil
}
