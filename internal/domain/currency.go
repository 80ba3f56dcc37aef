package domain

import "regexp"

type Currency struct {
	Code string
	Name string
}

var codeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// IsCurrencyCode reports whether s is a three-letter upper-case ISO-style code.
func IsCurrencyCode(s string) bool {
	return codeRe.MatchString(s)
}
