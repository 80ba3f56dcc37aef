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
	log := logx.L()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitWorker(ctx)
	if err != nil {
		log.Fatal("init worker", zap.Error(err))
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		log.Error("worker exited", zap.Error(err))
	}
}
