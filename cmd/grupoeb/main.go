package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/grupoebmx/backendgrupoeb/internal/app"
	"github.com/grupoebmx/backendgrupoeb/internal/finance"
	"github.com/grupoebmx/backendgrupoeb/internal/observability"
	"github.com/grupoebmx/backendgrupoeb/internal/orders"
	"github.com/grupoebmx/backendgrupoeb/internal/pipeline"
	"github.com/grupoebmx/backendgrupoeb/internal/platform/cache"
	"github.com/grupoebmx/backendgrupoeb/internal/platform/db"
	"github.com/grupoebmx/backendgrupoeb/internal/production"
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

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, detail cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	detailCache := production.NewDetailCache(redisClient, cfg.DetailCacheTTL)

	ordersService := orders.NewService(orders.NewRepository(pool))
	productionService := production.NewService(logger, production.NewRepository(pool), detailCache)
	pipelineService := pipeline.NewService(logger, pipeline.NewRepository(pool), detailCache)
	financeService := finance.NewService(finance.NewRepository(pool))
	retentionService := retention.NewService(logger, retention.NewRepository(pool), metrics)

	jobsHandler := jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		OrdersHandler:     orders.NewHandler(logger, ordersService),
		PipelineHandler:   pipeline.NewHandler(logger, pipelineService),
		ProductionHandler: production.NewHandler(logger, productionService),
		FinanceHandler:    finance.NewHandler(logger, financeService),
		RetentionHandler:  retention.NewHandler(logger, retentionService, cfg.RetentionDays),
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
