package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Provider
	Provider           string
	ProviderBaseURL    string
	ProviderSourceName string
	ProviderTimeout    time.Duration
	ProviderRPS        int
	FetchTimeout       time.Duration
	// Ingestion
	SchedulerEnabled   bool
	SchedulerInterval  time.Duration
	CatalogSyncOnStart bool
	RateWriteMode      string
	PairRejectSame     bool
	// Tick lock
	TickLockBackend string
	TickLockTTL     time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func msDef(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, ""), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Provider:           strings.ToLower(getEnv("PROVIDER", "frankfurter")),
		ProviderBaseURL:    getEnv("PROVIDER_BASE_URL", "https://api.frankfurter.app"),
		ProviderSourceName: getEnv("PROVIDER_SOURCE_NAME", "frankfurter.app"),
		ProviderTimeout:    msDef("PROVIDER_TIMEOUT_MS", 5000),
		ProviderRPS:        atoiDef(getEnv("PROVIDER_RPS", ""), 5),
		FetchTimeout:       msDef("FETCH_TIMEOUT_MS", 10000),
		SchedulerEnabled:   boolDef(getEnv("SCHEDULER_ENABLED", ""), true),
		SchedulerInterval:  msDef("SCHEDULER_INTERVAL_MS", 60000),
		CatalogSyncOnStart: boolDef(getEnv("CATALOG_SYNC_ON_START", ""), true),
		RateWriteMode:      strings.ToLower(getEnv("RATE_WRITE_MODE", "append")),
		PairRejectSame:     boolDef(getEnv("PAIR_REJECT_SAME", ""), true),
		TickLockBackend:    strings.ToLower(getEnv("TICK_LOCK_BACKEND", "none")),
		TickLockTTL:        msDef("TICK_LOCK_TTL_MS", 120000),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", ""), 0),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Provider {
	case "frankfurter", "fake":
	default:
		errs = append(errs, fmt.Errorf("PROVIDER=%q: want frankfurter or fake", c.Provider))
	}
	switch c.RateWriteMode {
	case "append", "upsert":
	default:
		errs = append(errs, fmt.Errorf("RATE_WRITE_MODE=%q: want append or upsert", c.RateWriteMode))
	}
	switch c.TickLockBackend {
	case "none", "redis":
	default:
		errs = append(errs, fmt.Errorf("TICK_LOCK_BACKEND=%q: want none or redis", c.TickLockBackend))
	}
	if c.SchedulerInterval <= 0 {
		errs = append(errs, errors.New("SCHEDULER_INTERVAL_MS must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT_MS must be positive"))
	}
	if c.ProviderRPS < 0 {
		errs = append(errs, errors.New("PROVIDER_RPS must not be negative"))
	}
	if c.TickLockBackend == "redis" && c.TickLockTTL <= 0 {
		errs = append(errs, errors.New("TICK_LOCK_TTL_MS must be positive"))
	}
	return errors.Join(errs...)
}
