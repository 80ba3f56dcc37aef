package httpserver

import (
	"context"
	"time"

	"fxrates-ingest/internal/domain"
)

type stubRegistry struct {
	currencies []domain.Currency
	pairs      []domain.Pair
	addErr     error
	listErr    error
}

func (s *stubRegistry) ListCurrencies(context.Context) ([]domain.Currency, error) {
	return s.currencies, s.listErr
}

func (s *stubRegistry) ListPairs(context.Context) ([]domain.Pair, error) { return s.pairs, s.listErr }

func (s *stubRegistry) AddPair(_ context.Context, base, target string) (domain.Pair, error) {
	if s.addErr != nil {
		return domain.Pair{}, s.addErr
	}
	p := domain.Pair{ID: int64(len(s.pairs) + 1), Base: base, Target: target}
	s.pairs = append(s.pairs, p)
	return p, nil
}

type stubIngest struct {
	rec      domain.ExchangeRate
	rates    []domain.ExchangeRate
	err      error
	gotPair  int64
	gotFrom  time.Time
	gotTo    time.Time
	gotCodes [2]string
}

func (s *stubIngest) FetchPair(_ context.Context, base, target string) (domain.ExchangeRate, error) {
	s.gotCodes = [2]string{base, target}
	return s.rec, s.err
}

func (s *stubIngest) Rates(_ context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	s.gotPair, s.gotFrom, s.gotTo = pairID, from, to
	return s.rates, s.err
}

type stubHistory struct {
	pair     domain.Pair
	obs      []domain.Observation
	err      error
	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubHistory) Range(_ context.Context, _ int64, start, end time.Time) (domain.Pair, []domain.Observation, error) {
	s.gotStart, s.gotEnd = start, end
	return s.pair, s.obs, s.err
}

type stubTicks struct {
	rep domain.TickReport
	err error
}

func (s stubTicks) RunOnce(context.Context) (domain.TickReport, error) { return s.rep, s.err }
