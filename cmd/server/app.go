package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/account-service/internal/config"
	"github.com/phrazzld/account-service/internal/events"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/service/auth"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/phrazzld/account-service/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds the shared dependencies of the server so they can be
// built in one place and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       *sql.DB
	accounts store.AccountStore

	accountService service.AccountService
	eventEmitter   *events.InMemoryEventEmitter
	taskRunner     *task.Runner

	registry *prometheus.Registry
}

// newApplication opens the store for the configured driver and wires the
// service, event emitter and task runner on top of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	accounts, db, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app, err := assembleApplication(cfg, logger, accounts)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	app.db = db
	return app, nil
}

// assembleApplication wires everything above the store. It starts the task
// runner; callers must call cleanup.
func assembleApplication(cfg *config.Config, logger *slog.Logger, accounts store.AccountStore) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		accounts: accounts,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential hasher: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))

	app.accountService, err = service.NewAccountService(accounts, hasher, logger,
		service.WithEventEmitter(app.eventEmitter))
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}

	runnerCfg := task.DefaultRunnerConfig()
	runnerCfg.QueueSize = cfg.Task.QueueSize
	runnerCfg.WorkerCount = cfg.Task.WorkerCount
	app.taskRunner = task.NewRunner(runnerCfg, logger)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		logger.Warn("background task failed",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
	})
	app.taskRunner.Start()

	app.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "account_task_queue_depth",
		Help: "Background tasks waiting for a worker.",
	}, func() float64 { return float64(app.taskRunner.Pending()) }))

	logger.Info("application initialized",
		slog.Int("bcrypt_cost", hasher.Cost()),
		slog.Int("event_handlers", app.eventEmitter.HandlerCount()),
		slog.Int("task_workers", runnerCfg.WorkerCount))
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains the task runner and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Error("task runner did not drain", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}

func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}
