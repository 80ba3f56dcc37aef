package application

import (
	"context"
	"strings"
	"testing"

	"fxrates-ingest/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_CatalogSync_InsertsAbsentCodes(t *testing.T) {
	t.Parallel()
	cur := newFakeCurrencyRepo("USD")
	cur.rows["USD"] = domain.Currency{Code: "USD", Name: "Dollar (kept)"}
	prov := &fakeRateProvider{currencies: map[string]string{
		"USD": "United States Dollar",
		"EUR": "Euro",
		"JPY": "Japanese Yen",
	}}

	n, err := NewCatalogSync(prov, cur, snapshotUoW{repo: cur}, nil).Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "Euro", cur.get("EUR").Name)
	require.Equal(t, "Dollar (kept)", cur.get("USD").Name)

	// Re-running adds nothing.
	n, err = NewCatalogSync(prov, cur, snapshotUoW{repo: cur}, nil).Sync(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func Test_CatalogSync_SkipsMalformedAndTruncates(t *testing.T) {
	t.Parallel()
	cur := newFakeCurrencyRepo()
	prov := &fakeRateProvider{currencies: map[string]string{
		"XBTC": "not iso",
		"gbp":  strings.Repeat("P", 80),
	}}

	n, err := NewCatalogSync(prov, cur, nil, nil).Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.False(t, cur.has("XBTC"))
	require.Len(t, cur.get("GBP").Name, maxCurrencyNameLen)
}

func Test_CatalogSync_ProviderFailureWritesNothing(t *testing.T) {
	t.Parallel()
	cur := newFakeCurrencyRepo()
	prov := &fakeRateProvider{listErr: ErrRepo}

	_, err := NewCatalogSync(prov, cur, nil, nil).Sync(context.Background())
	require.ErrorIs(t, err, domain.ErrFetch)
	require.ErrorIs(t, err, ErrRepo)

	list, err := cur.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func Test_CatalogSync_StoreFailureRollsBack(t *testing.T) {
	t.Parallel()
	cur := newFakeCurrencyRepo()
	cur.failOn = "JPY"
	prov := &fakeRateProvider{currencies: map[string]string{
		"AUD": "Australian Dollar",
		"EUR": "Euro",
		"JPY": "Japanese Yen",
	}}

	_, err := NewCatalogSync(prov, cur, snapshotUoW{repo: cur}, nil).Sync(context.Background())
	require.ErrorIs(t, err, domain.ErrStore)
	require.False(t, cur.has("AUD"))
	require.False(t, cur.has("EUR"))
}
