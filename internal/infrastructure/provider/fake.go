package provider

import (
	"context"
	"hash/fnv"
	"time"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/domain"
)

var (
	_ application.RateProvider    = (*Fake)(nil)
	_ application.CurrencyLister  = (*Fake)(nil)
	_ application.HistoryProvider = (*Fake)(nil)
)

// Fake serves deterministic rates for local runs without network access.
// Every pair quotes a stable value derived from its codes, dated today.
type Fake struct {
	catalog map[string]string
	now     func() time.Time
}

func NewFake() *Fake {
	return &Fake{
		catalog: map[string]string{
			"USD": "United States Dollar",
			"EUR": "Euro",
			"GBP": "British Pound",
			"JPY": "Japanese Yen",
			"CHF": "Swiss Franc",
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (f *Fake) Latest(_ context.Context, base, target string) (domain.Observation, error) {
	if _, ok := f.catalog[target]; !ok {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchNoRate}
	}
	return domain.Observation{Timestamp: day(f.now()), Rate: fakeRate(base, target)}, nil
}

func (f *Fake) Currencies(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(f.catalog))
	for k, v := range f.catalog {
		out[k] = v
	}
	return out, nil
}

func (f *Fake) History(_ context.Context, base, target string, start, end time.Time) ([]domain.Observation, error) {
	if _, ok := f.catalog[target]; !ok {
		return nil, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchNoRate}
	}
	var out []domain.Observation
	for d := day(start); !d.After(day(end)); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.Observation{Timestamp: d, Rate: fakeRate(base, target)})
	}
	return out, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fakeRate(base, target string) float64 {
	if base == target {
		return 1
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(base + target))
	return 0.5 + float64(h.Sum32()%1000)/1000
}
