package domain

import "time"

// TickReport summarizes one pass of the ingestion job over all tracked pairs.
type TickReport struct {
	StartedAt   time.Time
	Duration    time.Duration
	Pairs       int
	Stored      int
	FetchFailed int
	StoreFailed int
	Panicked    int
}

func (r TickReport) Failed() int { return r.FetchFailed + r.StoreFailed + r.Panicked }
