package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/config"
	"github.com/boddenberg/pix-gateway-proxy/internal/handler"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/gateway"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("gateway_base_url", cfg.GatewayBaseURL),
		zap.Bool("gateway_credentials_set", cfg.Credentials().Complete()),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
		zap.Int("rate_limit_burst", cfg.RateLimitBurst),
		zap.Strings("cors_allowed_origins", cfg.AllowedOrigins),
	)
	if !cfg.Credentials().Complete() {
		logger.Warn("gateway credentials not set; transaction routes will answer 500 until GATEWAY_PUBLIC_KEY and GATEWAY_SECRET_KEY are provided")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "pix-gateway-proxy")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Gateway client ---
	gatewayClient := gateway.NewFromConfig(cfg, metrics, logger)

	// --- Services ---
	proxy := service.NewTransactionProxy(gatewayClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(proxy, handler.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
		RateLimitIdleTTL: cfg.RateLimitIdleTTL,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
