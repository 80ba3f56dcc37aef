package bootstrap

import (
	"context"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/config"
	"fxrates-ingest/internal/infrastructure/worker"

	"go.uber.org/zap"
)

// WorkerApp runs only the scheduler; pair with TICK_LOCK_BACKEND=redis when
// an API process also ticks against the same database.
type WorkerApp struct {
	Cfg       config.Config
	Log       *zap.Logger
	Scheduler *worker.Scheduler
	Catalog   *application.CatalogSync
}

func NewWorkerApp(cfg config.Config, log *zap.Logger, sched *worker.Scheduler, catalog *application.CatalogSync) *WorkerApp {
	sched.RunAtStart = true
	return &WorkerApp{Cfg: cfg, Log: log, Scheduler: sched, Catalog: catalog}
}

func (a *WorkerApp) Run(ctx context.Context) error {
	syncCatalog(ctx, a.Cfg, a.Catalog, a.Log)
	a.Scheduler.Start(ctx)
	return nil
}
