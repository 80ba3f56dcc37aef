package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/config"
	infraconfig "fxrates-ingest/internal/infrastructure/config"
	httpserver "fxrates-ingest/internal/infrastructure/http"
	"fxrates-ingest/internal/infrastructure/httpx"
	"fxrates-ingest/internal/infrastructure/logx"
	"fxrates-ingest/internal/infrastructure/metrics"
	"fxrates-ingest/internal/infrastructure/pg"
	"fxrates-ingest/internal/infrastructure/provider"
	redisstore "fxrates-ingest/internal/infrastructure/redis"
	"fxrates-ingest/internal/infrastructure/worker"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RatesSource is everything the ingestion side needs from an upstream.
type RatesSource interface {
	application.RateProvider
	application.CurrencyLister
	application.HistoryProvider
}

type Repos struct {
	Currencies application.CurrencyRepo
	Sources    application.SourceRepo
	Pairs      application.PairRepo
	Rates      application.RateRepo
	UoW        application.UnitOfWork
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRepos(db *pg.DB, cfg config.Config) (Repos, error) {
	mode, err := pg.ParseWriteMode(cfg.RateWriteMode)
	if err != nil {
		return Repos{}, err
	}
	return Repos{
		Currencies: pg.NewCurrencyRepo(db),
		Sources:    pg.NewSourceRepo(db),
		Pairs:      pg.NewPairRepo(db),
		Rates:      pg.NewRateRepo(db, mode),
		UoW:        pg.NewUnitOfWork(db),
	}, nil
}

func ProvideHTTPClient(cfg config.Config) *httpx.Client {
	c := &httpx.Client{HTTP: &http.Client{Timeout: cfg.ProviderTimeout}}
	if cfg.ProviderRPS > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.ProviderRPS), cfg.ProviderRPS)
	}
	return c
}

func ProvideRatesSource(cfg config.Config, client *httpx.Client) (RatesSource, error) {
	switch cfg.Provider {
	case "frankfurter":
		return provider.NewFrankfurter(cfg.ProviderBaseURL, client), nil
	case "fake":
		return provider.NewFake(), nil
	default:
		return nil, fmt.Errorf("unknown PROVIDER %q", cfg.Provider)
	}
}

func ProvideMetrics() *metrics.IngestMetrics { return metrics.NewIngestMetrics() }

func ProvideRegistry(r Repos, cfg config.Config, log *zap.Logger) *application.Registry {
	return application.NewRegistry(r.Currencies, r.Sources, r.Pairs,
		application.WithRejectSamePair(cfg.PairRejectSame),
		application.WithRegistryLogger(log.With(zap.String("component", "registry"))),
	)
}

func ProvideIngestor(reg *application.Registry, r Repos, src RatesSource, m *metrics.IngestMetrics, cfg config.Config, log *zap.Logger) *application.Ingestor {
	return application.NewIngestor(reg, r.Rates, src,
		application.SourceSpec{Name: cfg.ProviderSourceName, APIURL: cfg.ProviderBaseURL},
		application.WithFetchTimeout(cfg.FetchTimeout),
		application.WithMetrics(m),
		application.WithIngestLogger(log.With(zap.String("component", "ingest"))),
	)
}

func ProvideHistory(reg *application.Registry, src RatesSource) *application.History {
	return application.NewHistory(reg, src)
}

func ProvideCatalogSync(src RatesSource, r Repos, log *zap.Logger) *application.CatalogSync {
	return application.NewCatalogSync(src, r.Currencies, r.UoW, log.With(zap.String("component", "catalog")))
}

func ProvideTickLock(ctx context.Context, cfg config.Config) (application.TickLock, func(), error) {
	if cfg.TickLockBackend != "redis" {
		return application.NoopTickLock{}, func() {}, nil
	}
	client, err := redisstore.Connect(ctx, redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, func() {}, err
	}
	return redisstore.NewTickLock(client, cfg.TickLockTTL), func() { _ = client.Close() }, nil
}

func ProvideScheduler(ing *application.Ingestor, lock application.TickLock, m *metrics.IngestMetrics, cfg config.Config, log *zap.Logger) *worker.Scheduler {
	return &worker.Scheduler{
		Ingest:  ing,
		Lock:    lock,
		LockKey: infraconfig.DefaultTickLockKey,
		Metrics: m,
		Every:   cfg.SchedulerInterval,
		Log:     log.With(zap.String("component", "scheduler")),
	}
}

func ProvideServer(reg *application.Registry, ing *application.Ingestor, hist *application.History, sched *worker.Scheduler, db *pg.DB, m *metrics.IngestMetrics) *httpserver.Server {
	s := httpserver.NewServer(reg, ing, hist, sched)
	s.SetReadyCheck(func(ctx context.Context) error {
		return db.PingTimeout(ctx, infraconfig.DefaultReadyTimeout)
	})
	s.SetMetricsHandler(m.Handler())
	return s
}
