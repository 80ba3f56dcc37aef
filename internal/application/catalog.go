package application

import (
	"context"
	"errors"
	"sort"

	"fxrates-ingest/internal/domain"

	"go.uber.org/zap"
)

const maxCurrencyNameLen = 50

// CatalogSync seeds the currency table from the provider's code list.
type CatalogSync struct {
	provider   CurrencyLister
	currencies CurrencyRepo
	uow        UnitOfWork
	log        *zap.Logger
}

func NewCatalogSync(provider CurrencyLister, currencies CurrencyRepo, uow UnitOfWork, log *zap.Logger) *CatalogSync {
	if uow == nil {
		uow = NoopUoW{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSync{provider: provider, currencies: currencies, uow: uow, log: log}
}

// Sync inserts every provider code not yet stored and returns how many rows it
// added. The batch commits once; on any failure nothing is written. Existing
// rows are left as they are.
func (s *CatalogSync) Sync(ctx context.Context) (int, error) {
	list, err := s.provider.Currencies(ctx)
	if err != nil {
		var fe *domain.FetchError
		if !errors.As(err, &fe) {
			err = &domain.FetchError{Kind: domain.FetchTransport, Err: err}
		}
		s.log.Error("catalog_sync_fetch_failed", zap.Error(err))
		return 0, err
	}

	codes := make([]string, 0, len(list))
	for code := range list {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	inserted := 0
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		for _, raw := range codes {
			code := domain.NormalizeCode(raw)
			if !domain.IsCurrencyCode(code) {
				s.log.Warn("catalog_sync_skip_code", zap.String("code", raw))
				continue
			}
			created, err := s.currencies.InsertIfAbsent(ctx, domain.Currency{Code: code, Name: truncate(list[raw], maxCurrencyNameLen)})
			if err != nil {
				return &domain.StoreError{Op: "insert currency " + code, Err: err}
			}
			if created {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("catalog_sync_failed", zap.Error(err))
		return 0, err
	}
	s.log.Info("catalog_sync_done", zap.Int("provider_codes", len(codes)), zap.Int("inserted", inserted))
	return inserted, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
