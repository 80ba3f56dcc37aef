package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxrates-ingest/internal/domain"

	"go.uber.org/zap"
)

const defaultFetchTimeout = 10 * time.Second

// SourceSpec identifies the provider every observation is attributed to.
type SourceSpec struct {
	Name   string
	APIURL string
}

// Ingestor drives fetch-then-store for tracked pairs.
type Ingestor struct {
	registry     *Registry
	rates        RateRepo
	provider     RateProvider
	source       SourceSpec
	fetchTimeout time.Duration
	metrics      IngestMetrics
	clock        Clock
	log          *zap.Logger
}

type IngestOption func(*Ingestor)

func WithFetchTimeout(d time.Duration) IngestOption {
	return func(i *Ingestor) { i.fetchTimeout = d }
}

func WithMetrics(m IngestMetrics) IngestOption { return func(i *Ingestor) { i.metrics = m } }

func WithClock(c Clock) IngestOption { return func(i *Ingestor) { i.clock = c } }

func WithIngestLogger(l *zap.Logger) IngestOption { return func(i *Ingestor) { i.log = l } }

func NewIngestor(registry *Registry, rates RateRepo, provider RateProvider, source SourceSpec, opts ...IngestOption) *Ingestor {
	i := &Ingestor{
		registry:     registry,
		rates:        rates,
		provider:     provider,
		source:       source,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.metrics == nil {
		i.metrics = NoopMetrics{}
	}
	if i.clock == nil {
		i.clock = realClock{}
	}
	if i.log == nil {
		i.log = zap.NewNop()
	}
	if i.fetchTimeout <= 0 {
		i.fetchTimeout = defaultFetchTimeout
	}
	return i
}

// Tick fetches and stores the latest rate for every tracked pair, one pair at
// a time. Per-pair failures are logged and counted in the report; an error is
// returned only when the tick could not start (source or pair list
// unavailable) or ctx was canceled midway.
func (i *Ingestor) Tick(ctx context.Context) (domain.TickReport, error) {
	report := domain.TickReport{StartedAt: i.clock.Now()}
	start := time.Now()

	src, err := i.registry.GetOrCreateSource(ctx, i.source.Name, i.source.APIURL)
	if err != nil {
		return report, fmt.Errorf("resolve source: %w", err)
	}
	pairs, err := i.registry.ListPairs(ctx)
	if err != nil {
		return report, fmt.Errorf("list pairs: %w", err)
	}
	report.Pairs = len(pairs)

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			i.metrics.TickCompleted(report)
			return report, err
		}
		outcome := i.processPair(ctx, src, p)
		switch outcome {
		case OutcomeStored:
			report.Stored++
		case OutcomeFetchFailed:
			report.FetchFailed++
		case OutcomeStoreFailed:
			report.StoreFailed++
		case OutcomePanicked:
			report.Panicked++
		}
		i.metrics.PairProcessed(p, outcome)
	}

	report.Duration = time.Since(start)
	i.metrics.TickCompleted(report)
	return report, nil
}

func (i *Ingestor) processPair(ctx context.Context, src domain.Source, p domain.Pair) (outcome PairOutcome) {
	log := i.log.With(zap.Int64("pair_id", p.ID), zap.String("pair", p.String()))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("pair_panic", zap.Any("panic", rec))
			outcome = OutcomePanicked
		}
	}()

	obs, err := i.fetch(ctx, p.Base, p.Target)
	if err != nil {
		log.Warn("pair_fetch_failed", zap.Error(err))
		return OutcomeFetchFailed
	}
	if _, err := i.store(ctx, p.ID, src.ID, obs); err != nil {
		log.Error("pair_store_failed", zap.Error(err))
		return OutcomeStoreFailed
	}
	log.Info("pair_stored",
		zap.Float64("rate", obs.Rate),
		zap.String("date", obs.Timestamp.Format(time.DateOnly)),
	)
	return OutcomeStored
}

// FetchPair is the ad hoc path: it registers the currencies and the pair if
// needed, then fetches and stores one observation.
func (i *Ingestor) FetchPair(ctx context.Context, base, target string) (domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	if err := domain.ValidatePair(base, target, i.registry.rejectSame); err != nil {
		return domain.ExchangeRate{}, err
	}
	src, err := i.registry.GetOrCreateSource(ctx, i.source.Name, i.source.APIURL)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	for _, code := range []string{base, target} {
		if err := i.registry.EnsureCurrency(ctx, code); err != nil {
			return domain.ExchangeRate{}, err
		}
	}
	p, err := i.registry.GetOrCreatePair(ctx, base, target)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	obs, err := i.fetch(ctx, p.Base, p.Target)
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	return i.store(ctx, p.ID, src.ID, obs)
}

// fetch bounds the provider call by fetchTimeout and guarantees the error is a
// *domain.FetchError.
func (i *Ingestor) fetch(ctx context.Context, base, target string) (domain.Observation, error) {
	fctx, cancel := context.WithTimeout(ctx, i.fetchTimeout)
	defer cancel()

	obs, err := i.provider.Latest(fctx, base, target)
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return domain.Observation{}, err
		}
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchTransport, Err: err}
	}
	if !obs.Valid() {
		return domain.Observation{}, &domain.FetchError{
			Base: base, Target: target, Kind: domain.FetchInvalidRate,
			Err: fmt.Errorf("rate %v at %v", obs.Rate, obs.Timestamp),
		}
	}
	return obs, nil
}

func (i *Ingestor) store(ctx context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error) {
	rec, err := i.rates.Append(ctx, pairID, sourceID, obs)
	if err != nil {
		var se *domain.StoreError
		if errors.As(err, &se) {
			return domain.ExchangeRate{}, err
		}
		return domain.ExchangeRate{}, &domain.StoreError{Op: "append rate", Err: err}
	}
	return rec, nil
}

// Rates returns the stored series for a pair within [from, to]; zero bounds are open.
func (i *Ingestor) Rates(ctx context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	if _, err := i.registry.GetPair(ctx, pairID); err != nil {
		return nil, err
	}
	out, err := i.rates.ListByPair(ctx, pairID, from, to)
	if err != nil {
		return nil, &domain.StoreError{Op: "list rates", Err: err}
	}
	return out, nil
}
