// Command time-service serves the current UTC time over HTTP, optionally
// shifted by a client-supplied fixed offset.
//
// Debugging Notes:
//   - Server starts on HTTP_PORT (default 5000)
//   - DEBUG_MODE (default true) raises log verbosity and exposes /debug/routes
//   - A .env file in the working directory is loaded before configuration
//   - Graceful shutdown on SIGINT/SIGTERM, bounded by SHUTDOWN_TIMEOUT
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/time-service/internal/clock"
	"github.com/otherjamesbrown/time-service/internal/config"
	"github.com/otherjamesbrown/time-service/internal/health"
	"github.com/otherjamesbrown/time-service/internal/logging"
	"github.com/otherjamesbrown/time-service/internal/server"
	"github.com/otherjamesbrown/time-service/internal/telemetry"
	"github.com/otherjamesbrown/time-service/internal/timeapi"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.MustLoad()

	logger, err := logging.New(logging.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.EffectiveLogLevel(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting time service",
		zap.String("env", cfg.Environment),
		zap.Int("port", cfg.HTTPPort),
		zap.Bool("debug", cfg.DebugMode.Enabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.TelemetryEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TelemetryEndpoint,
		Protocol:    cfg.TelemetryProtocol,
		Insecure:    cfg.TelemetryInsecure,
		Headers:     cfg.TelemetryHeaders,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	if provider.Fallback() {
		logger.Warn("telemetry running in degraded mode")
	}

	systemClock := clock.System{}
	registry := health.NewRegistry()
	registry.Register("clock", func(context.Context) error {
		return clock.Check(systemClock)
	})

	logger.Debug("readiness probes registered", zap.Strings("probes", registry.Names()))

	timeHandler := timeapi.NewHandler(
		timeapi.WithClock(systemClock),
		timeapi.WithLogger(logger),
	)

	srv := server.New(server.Options{
		Port:        cfg.HTTPPort,
		Logger:      logger,
		ServiceName: cfg.ServiceName,
		Debug:       cfg.DebugMode.Enabled(),
		Health:      registry,
		RegisterRoutes: func(r chi.Router) {
			timeHandler.RegisterRoutes(r)
		},
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown telemetry", zap.Error(err))
	}

	logger.Info("time service stopped")
}
