package domain

import "strings"

type Pair struct {
	ID     int64
	Base   string
	Target string
}

func (p Pair) String() string { return p.Base + "/" + p.Target }

// NormalizeCode trims and upper-cases a currency code as entered by a user.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidatePair checks a (base, target) tuple before it reaches storage.
// rejectSame controls the base != target rule.
func ValidatePair(base, target string, rejectSame bool) error {
	if base == "" {
		return &ValidationError{Field: "base", Reason: "is required"}
	}
	if target == "" {
		return &ValidationError{Field: "target", Reason: "is required"}
	}
	if !IsCurrencyCode(base) {
		return &ValidationError{Field: "base", Reason: "must be a 3-letter currency code"}
	}
	if !IsCurrencyCode(target) {
		return &ValidationError{Field: "target", Reason: "must be a 3-letter currency code"}
	}
	if rejectSame && base == target {
		return &ValidationError{Field: "target", Reason: "must differ from base"}
	}
	return nil
}
