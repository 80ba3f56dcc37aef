package application

import (
	"context"
	"time"

	"fxrates-ingest/internal/domain"
)

// History reads a date range for a registered pair straight from the
// provider. Nothing is persisted.
type History struct {
	registry *Registry
	provider HistoryProvider
}

func NewHistory(registry *Registry, provider HistoryProvider) *History {
	return &History{registry: registry, provider: provider}
}

func (h *History) Range(ctx context.Context, pairID int64, start, end time.Time) (domain.Pair, []domain.Observation, error) {
	if start.IsZero() || end.IsZero() {
		return domain.Pair{}, nil, &domain.ValidationError{Field: "range", Reason: "start and end are required"}
	}
	if end.Before(start) {
		return domain.Pair{}, nil, &domain.ValidationError{Field: "range", Reason: "end is before start"}
	}
	p, err := h.registry.GetPair(ctx, pairID)
	if err != nil {
		return domain.Pair{}, nil, err
	}
	obs, err := h.provider.History(ctx, p.Base, p.Target, start, end)
	if err != nil {
		return p, nil, err
	}
	return p, obs, nil
}
