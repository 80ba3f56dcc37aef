package application

import "fxrates-ingest/internal/domain"

type PairOutcome string

const (
	OutcomeStored      PairOutcome = "stored"
	OutcomeFetchFailed PairOutcome = "fetch_failed"
	OutcomeStoreFailed PairOutcome = "store_failed"
	OutcomePanicked    PairOutcome = "panicked"
)

// IngestMetrics receives ingestion events. Implementations must be safe for
// concurrent use.
type IngestMetrics interface {
	PairProcessed(pair domain.Pair, outcome PairOutcome)
	TickCompleted(report domain.TickReport)
	TickSkipped(reason string)
}

type NoopMetrics struct{}

func (NoopMetrics) PairProcessed(domain.Pair, PairOutcome) {}
func (NoopMetrics) TickCompleted(domain.TickReport)        {}
func (NoopMetrics) TickSkipped(string)                     {}
