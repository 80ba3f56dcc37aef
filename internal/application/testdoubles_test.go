package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fxrates-ingest/internal/domain"
)

var ErrRepo = errors.New("repo error")

type fakeCurrencyRepo struct {
	mu     sync.Mutex
	rows   map[string]domain.Currency
	failOn string
}

func newFakeCurrencyRepo(codes ...string) *fakeCurrencyRepo {
	f := &fakeCurrencyRepo{rows: map[string]domain.Currency{}}
	for _, c := range codes {
		f.rows[c] = domain.Currency{Code: c, Name: c}
	}
	return f
}

func (f *fakeCurrencyRepo) List(context.Context) ([]domain.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Currency, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeCurrencyRepo) InsertIfAbsent(_ context.Context, c domain.Currency) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.Code == f.failOn {
		return false, ErrRepo
	}
	if _, ok := f.rows[c.Code]; ok {
		return false, nil
	}
	f.rows[c.Code] = c
	return true, nil
}

func (f *fakeCurrencyRepo) has(code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[code]
	return ok
}

func (f *fakeCurrencyRepo) get(code string) domain.Currency {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[code]
}

// snapshotUoW restores the currency table when fn fails, like a rolled back tx.
type snapshotUoW struct{ repo *fakeCurrencyRepo }

func (u snapshotUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.repo.mu.Lock()
	saved := make(map[string]domain.Currency, len(u.repo.rows))
	for k, v := range u.repo.rows {
		saved[k] = v
	}
	u.repo.mu.Unlock()
	if err := fn(ctx); err != nil {
		u.repo.mu.Lock()
		u.repo.rows = saved
		u.repo.mu.Unlock()
		return err
	}
	return nil
}

type fakeSourceRepo struct {
	mu           sync.Mutex
	rows         []domain.Source
	inserts      int
	raceOnInsert bool // next Insert loses to a concurrent writer
	findErr      error
}

func (f *fakeSourceRepo) FindByName(_ context.Context, name string) (domain.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.Source{}, f.findErr
	}
	for _, s := range f.rows {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.Source{}, ErrNotFound
}

func (f *fakeSourceRepo) Insert(_ context.Context, name, apiURL string) (domain.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.raceOnInsert {
		f.raceOnInsert = false
		f.rows = append(f.rows, domain.Source{ID: int64(len(f.rows) + 1), Name: name, APIURL: apiURL})
		return domain.Source{}, ErrConflict
	}
	for _, s := range f.rows {
		if s.Name == name {
			return domain.Source{}, ErrConflict
		}
	}
	s := domain.Source{ID: int64(len(f.rows) + 1), Name: name, APIURL: apiURL}
	f.rows = append(f.rows, s)
	return s, nil
}

func (f *fakeSourceRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePairRepo struct {
	mu           sync.Mutex
	rows         []domain.Pair
	currencies   *fakeCurrencyRepo
	raceOnInsert bool
	listErr      error
}

func (f *fakePairRepo) List(context.Context) ([]domain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Pair(nil), f.rows...), nil
}

func (f *fakePairRepo) Get(_ context.Context, id int64) (domain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Pair{}, ErrNotFound
}

func (f *fakePairRepo) Find(_ context.Context, base, target string) (domain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.Base == base && p.Target == target {
			return p, nil
		}
	}
	return domain.Pair{}, ErrNotFound
}

func (f *fakePairRepo) Insert(_ context.Context, base, target string) (domain.Pair, error) {
	if f.currencies != nil && (!f.currencies.has(base) || !f.currencies.has(target)) {
		return domain.Pair{}, ErrForeignKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceOnInsert {
		f.raceOnInsert = false
		f.rows = append(f.rows, domain.Pair{ID: int64(len(f.rows) + 1), Base: base, Target: target})
		return domain.Pair{}, ErrConflict
	}
	for _, p := range f.rows {
		if p.Base == base && p.Target == target {
			return domain.Pair{}, ErrConflict
		}
	}
	p := domain.Pair{ID: int64(len(f.rows) + 1), Base: base, Target: target}
	f.rows = append(f.rows, p)
	return p, nil
}

func (f *fakePairRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRateRepo struct {
	mu       sync.Mutex
	rows     []domain.ExchangeRate
	failPair map[int64]error
}

func (f *fakeRateRepo) Append(_ context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPair[pairID]; err != nil {
		return domain.ExchangeRate{}, err
	}
	r := domain.ExchangeRate{
		ID:         int64(len(f.rows) + 1),
		PairID:     pairID,
		SourceID:   sourceID,
		Timestamp:  obs.Timestamp,
		Rate:       obs.Rate,
		InsertedAt: time.Now().UTC(),
	}
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeRateRepo) ListByPair(_ context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ExchangeRate
	for _, r := range f.rows {
		if r.PairID != pairID {
			continue
		}
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && r.Timestamp.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRateRepo) all() []domain.ExchangeRate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ExchangeRate(nil), f.rows...)
}

type providerResult struct {
	obs   domain.Observation
	err   error
	panic bool
}

// fakeRateProvider answers per "BASE/TARGET"; unknown pairs report no rate.
type fakeRateProvider struct {
	mu         sync.Mutex
	results    map[string]providerResult
	calls      []string
	currencies map[string]string
	listErr    error
	history    []domain.Observation
}

func (f *fakeRateProvider) Latest(_ context.Context, base, target string) (domain.Observation, error) {
	key := base + "/" + target
	f.mu.Lock()
	f.calls = append(f.calls, key)
	res, ok := f.results[key]
	f.mu.Unlock()
	if !ok {
		return domain.Observation{}, &domain.FetchError{Base: base, Target: target, Kind: domain.FetchNoRate}
	}
	if res.panic {
		panic("provider exploded")
	}
	return res.obs, res.err
}

func (f *fakeRateProvider) Currencies(context.Context) (map[string]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.currencies, nil
}

func (f *fakeRateProvider) History(context.Context, string, string, time.Time, time.Time) ([]domain.Observation, error) {
	return f.history, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[PairOutcome]int
	ticks    []domain.TickReport
}

func (m *recordingMetrics) PairProcessed(_ domain.Pair, o PairOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[PairOutcome]int{}
	}
	m.outcomes[o]++
}

func (m *recordingMetrics) TickCompleted(r domain.TickReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, r)
}

func (m *recordingMetrics) TickSkipped(string) {}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func okAt(rate float64, day time.Time) providerResult {
	return providerResult{obs: domain.Observation{Timestamp: day, Rate: rate}}
}
