package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-shop/meridian/internal/app"
	"github.com/meridian-shop/meridian/internal/authz"
	"github.com/meridian-shop/meridian/internal/ledger"
	"github.com/meridian-shop/meridian/internal/orders"
	"github.com/meridian-shop/meridian/internal/platform/cache"
	"github.com/meridian-shop/meridian/internal/platform/db"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, availability cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	az := authz.Middleware{Logger: logger}

	ledgerRepo := ledger.NewRepository(pool)
	var availabilityCache ledger.CachePort
	if redisClient != nil {
		availabilityCache = ledger.NewCache(redisClient, cfg.AvailabilityTTL)
	}
	ledgerService := ledger.NewService(ledgerRepo, availabilityCache, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, az)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, logger)
	orderHandler := orders.NewHandler(logger, orderService)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Pool:          pool,
		Authz:         az,
		OrderHandler:  orderHandler,
		LedgerHandler: ledgerHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
