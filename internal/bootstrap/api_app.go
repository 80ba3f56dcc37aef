package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/config"
	infraconfig "fxrates-ingest/internal/infrastructure/config"
	httpserver "fxrates-ingest/internal/infrastructure/http"
	"fxrates-ingest/internal/infrastructure/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// APIApp serves HTTP and, unless disabled, runs the ingestion scheduler in
// the same process.
type APIApp struct {
	Cfg       config.Config
	Log       *zap.Logger
	Server    *httpserver.Server
	Scheduler *worker.Scheduler
	Catalog   *application.CatalogSync
}

func NewAPIApp(cfg config.Config, log *zap.Logger, srv *httpserver.Server, sched *worker.Scheduler, catalog *application.CatalogSync) *APIApp {
	return &APIApp{Cfg: cfg, Log: log, Server: srv, Scheduler: sched, Catalog: catalog}
}

// Run blocks until ctx is canceled or a component fails, then shuts down.
func (a *APIApp) Run(ctx context.Context) error {
	syncCatalog(ctx, a.Cfg, a.Catalog, a.Log)

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort("", a.Cfg.Port),
		Handler:           httpserver.NewRouter(a.Server),
		ReadHeaderTimeout: infraconfig.DefaultReadHeaderTO,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("server started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if a.Cfg.SchedulerEnabled {
		g.Go(func() error {
			a.Scheduler.Start(ctx)
			return nil
		})
	} else {
		a.Log.Info("scheduler disabled; ticks only via POST /ticks")
	}
	g.Go(func() error {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), infraconfig.DefaultShutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shCtx)
		a.Scheduler.Stop()
		a.Log.Info("server stopped")
		return err
	})
	return g.Wait()
}

// syncCatalog seeds currencies once at startup. A failure is logged and the
// process keeps running; pairs on known codes still work.
func syncCatalog(ctx context.Context, cfg config.Config, c *application.CatalogSync, log *zap.Logger) {
	if !cfg.CatalogSyncOnStart || c == nil {
		return
	}
	if _, err := c.Sync(ctx); err != nil {
		log.Warn("catalog_sync_skipped", zap.Error(err))
	}
}
