package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PROVIDER", "RATE_WRITE_MODE", "SCHEDULER_INTERVAL_MS", "PAIR_REJECT_SAME", "TICK_LOCK_BACKEND"} {
		t.Setenv(k, "")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/fx")

	cfg := Load()
	require.Equal(t, "frankfurter", cfg.Provider)
	require.Equal(t, "https://api.frankfurter.app", cfg.ProviderBaseURL)
	require.Equal(t, time.Minute, cfg.SchedulerInterval)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, "append", cfg.RateWriteMode)
	require.True(t, cfg.PairRejectSame)
	require.True(t, cfg.SchedulerEnabled)
	require.Equal(t, "none", cfg.TickLockBackend)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fx")
	t.Setenv("SCHEDULER_INTERVAL_MS", "1500")
	t.Setenv("PAIR_REJECT_SAME", "false")
	t.Setenv("RATE_WRITE_MODE", "UPSERT")
	t.Setenv("PROVIDER_RPS", "not-a-number")

	cfg := Load()
	require.Equal(t, 1500*time.Millisecond, cfg.SchedulerInterval)
	require.False(t, cfg.PairRejectSame)
	require.Equal(t, "upsert", cfg.RateWriteMode)
	require.Equal(t, 5, cfg.ProviderRPS)
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Config{Provider: "ecb", RateWriteMode: "merge", TickLockBackend: "etcd"}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"DATABASE_URL", "PROVIDER", "RATE_WRITE_MODE", "TICK_LOCK_BACKEND", "SCHEDULER_INTERVAL_MS", "FETCH_TIMEOUT_MS"} {
		require.Contains(t, err.Error(), want)
	}
}
