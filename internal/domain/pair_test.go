package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePair(t *testing.T) {
	cases := []struct {
		name       string
		base       string
		target     string
		rejectSame bool
		wantField  string
	}{
		{"ok", "USD", "EUR", true, ""},
		{"missing base", "", "EUR", true, "base"},
		{"missing target", "USD", "", true, "target"},
		{"short code", "US", "EUR", true, "base"},
		{"digits", "USD", "EU1", true, "target"},
		{"same rejected", "USD", "USD", true, "target"},
		{"same allowed when flag off", "USD", "USD", false, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidatePair(c.base, c.target, c.rejectSame)
			if c.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, c.wantField, ve.Field)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	require.Equal(t, "USD", NormalizeCode(" usd "))
}

func TestFetchError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&FetchError{Base: "USD", Target: "EUR", Kind: FetchTransport, Err: cause})
	require.ErrorIs(t, err, ErrFetch)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrStore)
	require.Equal(t, "fetch USD/EUR: transport: boom", err.Error())
}

func TestStoreError_Is(t *testing.T) {
	err := error(&StoreError{Op: "append", Err: errors.New("fk")})
	require.ErrorIs(t, err, ErrStore)
	require.NotErrorIs(t, err, ErrFetch)
}
