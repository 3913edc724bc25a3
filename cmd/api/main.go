package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/contractor-leads/internal/api/router"
	"github.com/wolfman30/contractor-leads/internal/app/bootstrap"
	appconfig "github.com/wolfman30/contractor-leads/internal/config"
	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/contractor-leads/internal/http/middleware"
	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

func main() {
	// Local development reads .env; production injects the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting contractor-leads API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"queue_backend", cfg.QueueBackend,
		"history_backend", cfg.HistoryBackend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := bootstrap.LoadRegistry(cfg)
	if err != nil {
		logger.Error("failed to load form catalog", "error", err)
		os.Exit(1)
	}

	metricsHandler, leadMetrics := setupLeadMetrics()

	pool := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	var redisClient *redis.Client
	if bootstrap.NeedsRedis(cfg) {
		redisClient = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
		if redisClient == nil {
			logger.Error("redis backend configured but unreachable", "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
	}

	queue, closeQueue, err := bootstrap.BuildQueue(ctx, cfg, pool, redisClient)
	if err != nil {
		logger.Error("failed to open lead queue", "error", err)
		os.Exit(1)
	}
	defer closeQueue()

	history, err := bootstrap.BuildHistory(cfg, redisClient)
	if err != nil {
		logger.Error("failed to set up submission history", "error", err)
		os.Exit(1)
	}

	notifier := bootstrap.BuildNotifier(ctx, cfg, logger)

	pipeline, err := delivery.NewPipeline(delivery.PipelineConfig{
		Registry:   registry,
		Formatter:  leads.NewFormatter(cfg.FormVersion),
		Strategies: bootstrap.BuildStrategies(cfg, queue, logger),
		History:    history,
		Notifier:   notifier,
		Metrics:    leadMetrics,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to build delivery pipeline", "error", err)
		os.Exit(1)
	}

	monitor := delivery.NewQueueMonitor(queue, leadMetrics, logger)
	if err := monitor.Start(ctx, cfg.QueueMonitorSchedule); err != nil {
		logger.Error("failed to start queue monitor", "error", err)
		os.Exit(1)
	}
	defer monitor.Stop()

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	repos := bootstrap.BuildContentRepos(pool, logger)
	routerCfg := &router.Config{
		Logger:             logger,
		FormsHandler:       handlers.NewFormsHandler(registry, leadMetrics, logger),
		LeadsHandler:       handlers.NewLeadsHandler(registry, pipeline, leadMetrics, logger),
		AdminHandler:       handlers.NewAdminHandler(history, queue, logger),
		UploadHandler:      handlers.NewUploadHandler(bootstrap.BuildUploader(ctx, cfg, logger), logger),
		Projects:           handlers.NewContentHandler(repos.Projects, logger),
		Reviews:            handlers.NewContentHandler(repos.Reviews, logger),
		Posts:              handlers.NewContentHandler(repos.Posts, logger),
		MetricsHandler:     metricsHandler,
		LeadRateLimiter:    limiter,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin routes disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	pipeline.Wait()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
