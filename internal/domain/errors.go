package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrDuplicatePair = errors.New("currency pair already exists")
	ErrFetch         = errors.New("fetch failed")
	ErrStore         = errors.New("store failed")
)

// ValidationError reports malformed or semantically invalid registry input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type FetchErrorKind string

const (
	FetchTransport   FetchErrorKind = "transport"
	FetchStatus      FetchErrorKind = "status"
	FetchDecode      FetchErrorKind = "decode"
	FetchNoRate      FetchErrorKind = "no_rate"
	FetchInvalidRate FetchErrorKind = "invalid_rate"
	FetchBadDate     FetchErrorKind = "bad_date"
)

// FetchError is returned by rate providers for every failure mode; callers
// never see a raw transport or decode error.
type FetchError struct {
	Base   string
	Target string
	Kind   FetchErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	pair := e.Base
	if e.Target != "" {
		pair += "/" + e.Target
	}
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", pair, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", pair, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// StoreError wraps a persistence failure such as a foreign-key violation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }
