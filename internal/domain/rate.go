package domain

import (
	"math"
	"time"
)

// Observation is a single rate reported by the provider for one pair,
// stamped with the provider's as-of date.
type Observation struct {
	Timestamp time.Time
	Rate      float64
}

type ExchangeRate struct {
	ID         int64
	PairID     int64
	SourceID   int64
	Timestamp  time.Time
	Rate       float64
	InsertedAt time.Time
}

// Valid reports whether the observation carries a usable rate and date.
func (o Observation) Valid() bool {
	return !o.Timestamp.IsZero() && o.Rate > 0 && !math.IsInf(o.Rate, 0) && !math.IsNaN(o.Rate)
}
