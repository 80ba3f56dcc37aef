package logx

import (
	"strings"

	"fxrates-ingest/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
)

func init() {
	logger = New(config.Load().LogLevel)
}

// New builds the production JSON logger at level; an unknown level keeps info.
func New(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level)))
	}
	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

// Set replaces the package logger; main calls it after .env is loaded.
func Set(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}
