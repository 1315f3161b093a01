package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/esports-match-sync/internal/app"
	"github.com/riskibarqy/esports-match-sync/internal/config"
	"github.com/riskibarqy/esports-match-sync/internal/observability"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Service: cfg.ServiceName,
		Version: cfg.ServiceVersion,
		Env:     cfg.AppEnv,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	telemetry, err := observability.Setup(cfg, logger)
	if err != nil {
		logger.Error("setup telemetry", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := application.Run(ctx); err != nil {
		logger.Error("app stopped with error", "error", err)
		exitCode = 1
	}

	if err := application.Close(); err != nil {
		logger.Warn("close app resources", "error", err)
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(flushCtx); err != nil {
		logger.Warn("shutdown telemetry", "error", err)
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
