// Package logging builds the zap logger shared by ingest, the solver,
// and the optimizer. Grounded in noah-isme-sma-adp-api/pkg/logger,
// trimmed of its gin middleware (no HTTP surface here).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger. format is "console" or "json"; level is any
// zapcore level name ("debug", "info", "warn", "error"); unrecognized
// values fall back to info.
func New(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if format == "console" || format == "" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
