//go:build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideDB,
	ProvideRepos,
	ProvideHTTPClient,
	ProvideRatesSource,
	ProvideMetrics,
	ProvideTickLock,
)

var ingestSet = wire.NewSet(
	ProvideRegistry,
	ProvideIngestor,
	ProvideCatalogSync,
	ProvideScheduler,
)

// API injector: builds *APIApp + Cleanup
func InitAPI(ctx context.Context) (*APIApp, func(), error) {
	wire.Build(
		infraSet,
		ingestSet,
		ProvideHistory,
		ProvideServer,
		NewAPIApp,
	)
	return nil, nil, nil
}

// Worker injector: builds *WorkerApp + Cleanup
func InitWorker(ctx context.Context) (*WorkerApp, func(), error) {
	wire.Build(
		infraSet,
		ingestSet,
		NewWorkerApp,
	)
	return nil, nil, nil
}
