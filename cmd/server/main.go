package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/api"
	"github.com/presshub/presshub/internal/config"
	"github.com/presshub/presshub/internal/db"
	"github.com/presshub/presshub/internal/hook"
	"github.com/presshub/presshub/internal/metrics"
	"github.com/presshub/presshub/internal/ratelimiter"
	"github.com/presshub/presshub/internal/repository"
	"github.com/presshub/presshub/internal/scheduler"
	"github.com/presshub/presshub/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := repository.NewPgContentRepository(pool)

	var notifier hook.Notifier = hook.NopNotifier{}
	if cfg.WebhookURL != "" {
		notifier = hook.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout)
	}

	svc := service.NewContentService(repo, notifier, logger, nil)

	// ---- scheduled publishing ----
	budget := ratelimiter.New(cfg.PublishRatePerSec)
	pub := scheduler.NewPublisher(repo, budget, notifier, logger, nil)
	sched := scheduler.New(repo, pub, scheduler.Config{
		Interval: cfg.PollInterval,
		DueLimit: cfg.DueBatchLimit,
	}, logger, m.Reporter())

	if err := sched.Start(ctx); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// ---- HTTP server ----
	router := api.NewRouter(svc, sched, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the publishing loop; blocks until any in-flight pass finishes.
	sched.Stop()

	logger.Info("server stopped cleanly")
}
