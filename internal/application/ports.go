package application

import (
	"context"
	"time"

	"fxrates-ingest/internal/domain"
)

type CurrencyRepo interface {
	List(ctx context.Context) ([]domain.Currency, error)
	// InsertIfAbsent returns false when the code already exists; existing rows are never touched.
	InsertIfAbsent(ctx context.Context, c domain.Currency) (bool, error)
}

type SourceRepo interface {
	FindByName(ctx context.Context, name string) (domain.Source, error)
	Insert(ctx context.Context, name, apiURL string) (domain.Source, error)
}

type PairRepo interface {
	List(ctx context.Context) ([]domain.Pair, error)
	Get(ctx context.Context, id int64) (domain.Pair, error)
	Find(ctx context.Context, base, target string) (domain.Pair, error)
	Insert(ctx context.Context, base, target string) (domain.Pair, error)
}

type RateRepo interface {
	Append(ctx context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error)
	ListByPair(ctx context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error)
}

type RateProvider interface {
	Latest(ctx context.Context, base, target string) (domain.Observation, error)
}

type CurrencyLister interface {
	Currencies(ctx context.Context) (map[string]string, error)
}

type HistoryProvider interface {
	History(ctx context.Context, base, target string, start, end time.Time) ([]domain.Observation, error)
}
