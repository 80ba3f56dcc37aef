package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReadHeaderTO    = 5 * time.Second
	DefaultReadyTimeout    = 2 * time.Second

	DefaultPGMaxConns       = 5
	DefaultPGMinConns       = 1
	DefaultPGMaxConnIdle    = 2 * time.Minute
	DefaultMigratePingEvery = 500 * time.Millisecond
	DefaultMigratePingTries = 30

	DefaultProviderBaseURL    = "https://api.frankfurter.app"
	DefaultProviderSourceName = "frankfurter.app"
	DefaultProviderTimeout    = 5 * time.Second
	DefaultProviderRPS        = 5
	DefaultProviderRetries    = 3
	DefaultFetchTimeout       = 10 * time.Second

	DefaultSchedulerInterval = time.Minute
	DefaultTickLockKey       = "fxrates:tick"
	DefaultTickLockTTL       = 2 * time.Minute
)
