// Package logger constructs the process-wide zap logger shared by the
// server, schedulers, and database layer.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger. The default "ts" key is renamed
// to "timestamp" and rendered as ISO 8601 so log collectors can parse
// entries without a custom layout.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Must unwraps a (logger, error) pair at startup, panicking on failure.
func Must(logger *zap.Logger, err error) *zap.Logger {
	if err != nil {
		panic(err)
	}
	return logger
}

// Named derives a child logger tagged with the component name. A nil
// base yields a no-op logger so components stay safe in tests.
func Named(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component)
}
