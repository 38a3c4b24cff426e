package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/grupoebmx/backendgrupoeb/internal/app"
	"github.com/grupoebmx/backendgrupoeb/internal/observability"
	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
	"github.com/grupoebmx/backendgrupoeb/internal/retention"
	"github.com/grupoebmx/backendgrupoeb/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, db.Config{
		DSN:            cfg.PGDSN,
		MaxConns:       cfg.PGMaxConns,
		MinConns:       cfg.PGMinConns,
		ConnectTimeout: cfg.PGConnectTimeout,
	})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	retentionService := retention.NewService(logger, retention.NewRepository(pool), metrics)
	retentionJobs := jobs.NewRetentionJobs(logger, retentionService)

	softTask, err := jobs.NewSoftSweepTask(cfg.RetentionDays)
	if err != nil {
		logger.Error("build soft sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	deepTask, err := jobs.NewDeepSweepTask(cfg.RetentionDays)
	if err != nil {
		logger.Error("build deep sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Retention: retentionJobs,
		Cron: []jobs.CronRegistration{
			{Spec: cfg.CleanupCron, Task: softTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.CleanupCron, Task: deepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
