package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fxrates-ingest/internal/domain"

	"go.uber.org/zap"
)

// Registry owns the reference tables: currencies, sources and tracked pairs.
// Every mutating call issues a single insert that commits on its own, so a
// new pair is visible to the next tick. Races between concurrent writers are
// settled by unique constraints; the loser re-reads the winner's row.
type Registry struct {
	currencies CurrencyRepo
	sources    SourceRepo
	pairs      PairRepo
	rejectSame bool
	log        *zap.Logger
}

type RegistryOption func(*Registry)

// WithRejectSamePair toggles the base != target rule on pair creation.
func WithRejectSamePair(v bool) RegistryOption { return func(r *Registry) { r.rejectSame = v } }

func WithRegistryLogger(l *zap.Logger) RegistryOption { return func(r *Registry) { r.log = l } }

func NewRegistry(currencies CurrencyRepo, sources SourceRepo, pairs PairRepo, opts ...RegistryOption) *Registry {
	r := &Registry{
		currencies: currencies,
		sources:    sources,
		pairs:      pairs,
		rejectSame: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

func (r *Registry) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	out, err := r.currencies.List(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "list currencies", Err: err}
	}
	return out, nil
}

// EnsureCurrency inserts code with its code as display name when the catalog
// does not know it yet.
func (r *Registry) EnsureCurrency(ctx context.Context, code string) error {
	code = domain.NormalizeCode(code)
	if !domain.IsCurrencyCode(code) {
		return &domain.ValidationError{Field: "currency", Reason: "must be a 3-letter currency code"}
	}
	created, err := r.currencies.InsertIfAbsent(ctx, domain.Currency{Code: code, Name: code})
	if err != nil {
		return &domain.StoreError{Op: "ensure currency", Err: err}
	}
	if created {
		r.log.Info("currency_created", zap.String("code", code))
	}
	return nil
}

func (r *Registry) GetOrCreateSource(ctx context.Context, name, apiURL string) (domain.Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Source{}, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	src, err := r.sources.FindByName(ctx, name)
	if err == nil {
		return src, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Source{}, &domain.StoreError{Op: "find source", Err: err}
	}

	src, err = r.sources.Insert(ctx, name, apiURL)
	switch {
	case err == nil:
		r.log.Info("source_created", zap.String("name", name), zap.Int64("id", src.ID))
		return src, nil
	case errors.Is(err, ErrConflict):
		// Another writer inserted it between our lookup and insert.
		src, err = r.sources.FindByName(ctx, name)
		if err != nil {
			return domain.Source{}, &domain.StoreError{Op: "reread source", Err: err}
		}
		return src, nil
	default:
		return domain.Source{}, &domain.StoreError{Op: "insert source", Err: err}
	}
}

func (r *Registry) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	out, err := r.pairs.List(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "list pairs", Err: err}
	}
	return out, nil
}

func (r *Registry) GetPair(ctx context.Context, id int64) (domain.Pair, error) {
	p, err := r.pairs.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return domain.Pair{}, fmt.Errorf("pair %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Pair{}, &domain.StoreError{Op: "get pair", Err: err}
	}
	return p, nil
}

// AddPair registers a new tracked pair. It fails with a *domain.ValidationError
// for bad input and with domain.ErrDuplicatePair when the tuple exists.
func (r *Registry) AddPair(ctx context.Context, base, target string) (domain.Pair, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	if err := domain.ValidatePair(base, target, r.rejectSame); err != nil {
		return domain.Pair{}, err
	}
	p, err := r.pairs.Insert(ctx, base, target)
	switch {
	case err == nil:
		r.log.Info("pair_added", zap.Int64("id", p.ID), zap.String("pair", p.String()))
		return p, nil
	case errors.Is(err, ErrConflict):
		return domain.Pair{}, fmt.Errorf("add pair %s/%s: %w", base, target, domain.ErrDuplicatePair)
	case errors.Is(err, ErrForeignKey):
		return domain.Pair{}, &domain.ValidationError{Field: "currency", Reason: "unknown currency code"}
	default:
		return domain.Pair{}, &domain.StoreError{Op: "insert pair", Err: err}
	}
}

// GetOrCreatePair returns the registered pair for the tuple, creating it when absent.
func (r *Registry) GetOrCreatePair(ctx context.Context, base, target string) (domain.Pair, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	if err := domain.ValidatePair(base, target, r.rejectSame); err != nil {
		return domain.Pair{}, err
	}
	p, err := r.pairs.Find(ctx, base, target)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Pair{}, &domain.StoreError{Op: "find pair", Err: err}
	}

	p, err = r.pairs.Insert(ctx, base, target)
	switch {
	case err == nil:
		r.log.Info("pair_added", zap.Int64("id", p.ID), zap.String("pair", p.String()))
		return p, nil
	case errors.Is(err, ErrConflict):
		p, err = r.pairs.Find(ctx, base, target)
		if err != nil {
			return domain.Pair{}, &domain.StoreError{Op: "reread pair", Err: err}
		}
		return p, nil
	case errors.Is(err, ErrForeignKey):
		return domain.Pair{}, &domain.ValidationError{Field: "currency", Reason: "unknown currency code"}
	default:
		return domain.Pair{}, &domain.StoreError{Op: "insert pair", Err: err}
	}
}
