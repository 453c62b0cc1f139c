// Copyright (c) 2026 TaskFlow. All rights reserved.

// Command api is the TaskFlow API server entry point.
//
// It loads configuration from the environment, connects PostgreSQL and Redis,
// applies pending schema migrations, wires every domain together, and serves
// HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/auth"
	"github.com/taskflowhq/taskflow/internal/platform/config"
	"github.com/taskflowhq/taskflow/internal/platform/constants"
	"github.com/taskflowhq/taskflow/internal/platform/keepalive"
	"github.com/taskflowhq/taskflow/internal/platform/migration"
	"github.com/taskflowhq/taskflow/internal/platform/postgres"
	platformredis "github.com/taskflowhq/taskflow/internal/platform/redis"
	"github.com/taskflowhq/taskflow/internal/platform/sec"
	"github.com/taskflowhq/taskflow/internal/task"
)

func main() {
	// ── 1. Configuration & Logging ────────────────────────────────────────

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", slog.Any("error", err))
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).
		With(slog.String("app", constants.AppName), slog.String("version", constants.AppVersion))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 2. Infrastructure ─────────────────────────────────────────────────

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		log.Error("migration_failed", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("postgres_connect_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	cache, err := platformredis.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Error("redis_connect_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = cache.Close() }()

	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.SessionIssuer)
	if err != nil {
		log.Error("token_service_init_failed", slog.Any("error", err))
		os.Exit(1)
	}

	// ── 3. Domain Wiring ──────────────────────────────────────────────────

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewIdentityCache(cache),
		tokenService,
		log,
	)
	authHandler := auth.NewHandler(authService, auth.NewCookiePolicy(cfg.IsProduction()))

	taskService := task.NewService(task.NewPostgresRepository(pool))
	taskHandler := task.NewHandler(taskService)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return postgres.Ping(ctx, pool) },
		CheckCache:    func() error { return platformredis.Ping(ctx, cache) },
	}, log)

	server := api.NewServer(cfg, log, tokenService, authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Task:      taskHandler,
	})

	// ── 4. Background Workers ─────────────────────────────────────────────

	if cfg.KeepAliveURL != "" {
		interval := cfg.KeepAliveInterval
		if interval <= 0 {
			interval = constants.DefaultKeepAliveInterval
		}
		go keepalive.New(cfg.KeepAliveURL, interval, log).Run(ctx)
	}

	// ── 5. Serve & Shutdown ───────────────────────────────────────────────

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_failed", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
		cancel()

		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			log.Error("shutdown_failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	log.Info("server_stopped")
}
