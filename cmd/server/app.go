package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/background"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// application holds the shared dependencies of the server so they can be
// torn down in order on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	cache       *cache.MemoryGateway
	hub         *realtime.Hub
	dispatcher  *background.Dispatcher
	rateLimiter *middleware.RateLimiter
}

// newApplication wires stores, services and side channels. db must already
// be connected.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.cache = cache.NewMemoryGateway(cfg.Cache.ListingTTL)
	app.hub = realtime.NewHub(realtime.HubConfig{
		SendBuffer:   cfg.Realtime.SendBuffer,
		WriteTimeout: cfg.Realtime.WriteTimeout,
		PingInterval: cfg.Realtime.PingInterval,
	}, logger.With("component", "realtime_hub"))
	app.dispatcher = background.New(background.Config{
		MaxInFlight: cfg.Dispatch.MaxInFlight,
		JobTimeout:  cfg.Dispatch.JobTimeout,
	}, logger.With("component", "dispatcher"))

	if cfg.Server.RateLimitRPS > 0 {
		app.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 0)
	}

	app.userService = service.NewUserService(
		postgres.NewPostgresUserStore(db),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		app.cache,
		cfg.Cache.ListingTTL,
		logger,
	)

	app.taskService, err = service.NewTaskService(service.TaskServiceDeps{
		Transactor:    postgres.NewTransactor(db),
		Tasks:         postgres.NewPostgresTaskStore(db),
		Notifications: postgres.NewPostgresNotificationStore(db),
		Cache:         app.cache,
		Notifier:      app.hub,
		Dispatcher:    app.dispatcher,
		ListingTTL:    cfg.Cache.ListingTTL,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return app, nil
}

// start launches the expiry loops of the in-process caches.
func (app *application) start() {
	go app.cache.Start()
	if app.rateLimiter != nil {
		go app.rateLimiter.Start()
	}
}

// cleanup releases resources after the HTTP server has stopped accepting
// requests. Pending background jobs are drained before the hub closes so
// their pushes can still be delivered.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error

	if err := app.dispatcher.Shutdown(ctx); err != nil {
		app.logger.Error("Background jobs did not drain", "error", err)
		errs = append(errs, err)
	}
	app.hub.Close()
	app.cache.Stop()
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
			errs = append(errs, err)
		}
	}

	app.logger.Info("Application shutdown completed")
	return errors.Join(errs...)
}

func (app *application) shutdownTimeout() time.Duration {
	if app.config.Server.ShutdownTimeout > 0 {
		return app.config.Server.ShutdownTimeout
	}
	return 15 * time.Second
}
