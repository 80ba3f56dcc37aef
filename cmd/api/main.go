package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fxrates-ingest/internal/bootstrap"
	"fxrates-ingest/internal/config"
	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logx.Set(logx.New(config.Load().LogLevel))
	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitAPI(ctx)
	if err != nil {
		logger.Fatal("bootstrap api", zap.Error(err))
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		logger.Error("api exited", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}
