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
	"github.com/redis/go-redis/v9"

	"github.com/ekklesia-erp/ekklesia/cmd/ekklesia/cli"
	"github.com/ekklesia-erp/ekklesia/internal/analytics"
	analytichttp "github.com/ekklesia-erp/ekklesia/internal/analytics/http"
	"github.com/ekklesia-erp/ekklesia/internal/app"
	"github.com/ekklesia-erp/ekklesia/internal/observability"
	"github.com/ekklesia-erp/ekklesia/internal/platform/cache"
	"github.com/ekklesia-erp/ekklesia/internal/platform/db"
	"github.com/ekklesia-erp/ekklesia/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		err := jobsCLI.Run(ctx, os.Args[2:], os.Stdout)
		if closeErr := jobsCLI.Close(); closeErr != nil {
			logger.Warn("jobs cli close", slog.Any("error", closeErr))
		}
		if err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, serving reports uncached", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	reportCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	service := analytics.NewService(
		analytics.NewPGRepository(pool),
		reportCache,
		analytics.WithLogger(logger),
		analytics.WithObserver(metrics),
		analytics.WithDefaults(analytics.Defaults{
			TopLimit:        cfg.MetricsTopLimit,
			Sundays:         cfg.DashboardSundays,
			PopulationLimit: cfg.DashboardPopulationLimit,
		}),
	)
	if err := reportCache.ListenForInvalidation(ctx, cfg.BumpChannel, func(version int64) {
		logger.Debug("report cache invalidated", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	checks := map[string]app.Pinger{"postgres": pool}
	var jobHandler *jobs.Handler
	if redisClient != nil {
		checks["redis"] = app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AnalyticsHandler: analytichttp.NewHandler(logger, service),
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Checks:           checks,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
