package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/account-service/internal/api"
	apiMiddleware "github.com/phrazzld/account-service/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter mounts the account API, health check and metrics endpoint.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	metrics := apiMiddleware.NewMetrics(app.registry)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(metrics.Handler)

	accountHandler := api.NewAccountHandler(app.accountService, app.taskRunner, app.logger)
	r.Mount("/api/accounts", accountHandler.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}
