package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/paintquotepro/quote-platform/internal/api/router"
	"github.com/paintquotepro/quote-platform/internal/chat"
	appconfig "github.com/paintquotepro/quote-platform/internal/config"
	"github.com/paintquotepro/quote-platform/internal/observability/metrics"
	"github.com/paintquotepro/quote-platform/internal/pricing"
	"github.com/paintquotepro/quote-platform/internal/quotes"
	"github.com/paintquotepro/quote-platform/pkg/logging"
)

func main() {
	// Local development convenience; production injects real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting quote-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Quote storage: Postgres when configured, in-memory otherwise.
	var quoteRepo quotes.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		quoteRepo = quotes.NewPostgresRepository(pool)
		logger.Info("using postgres quote repository")
	} else {
		quoteRepo = quotes.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set; quotes are stored in memory only")
	}

	// Redis backs pricing config and, optionally, chat sessions.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	var sessionStore chat.Store
	if cfg.SessionBackend == "redis" {
		sessionStore = chat.NewRedisStore(redisClient, cfg.SessionTTL)
		logger.Info("using redis session store", "ttl", cfg.SessionTTL)
	} else {
		memStore := chat.NewMemoryStore(cfg.SessionTTL)
		defer memStore.Stop()
		sessionStore = memStore
		logger.Info("using in-memory session store", "ttl", cfg.SessionTTL)
	}

	registry := prometheus.NewRegistry()
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	pricingStore := pricing.NewStore(redisClient)

	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(sessionStore, quoteRepo, intakeMetrics, logger),
		QuotesHandler:      quotes.NewHandler(quoteRepo, logger),
		PricingHandler:     pricing.NewHandler(pricingStore, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
