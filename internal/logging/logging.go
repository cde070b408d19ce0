// Package logging configures the server's structured logger. LSP reserves
// stdout/stdin for the JSON-RPC transport, so every log line goes to
// stderr, following the same stderr-only convention the reference
// implementation's env_logger used (RUST_LOG drove verbosity there; here
// JSONLS_LOG plays the same role).
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger writing JSON-encoded entries to stderr at the
// level named by levelName ("debug", "info", "warn", "error"); unknown or
// empty values default to "info".
func New(levelName string) *zap.Logger {
	level := parseLevel(levelName)
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// FromEnv reads JSONLS_LOG to pick the level. The CLI does not call it; it
// applies the same JSONLS_LOG fallback itself before calling New.
func FromEnv() *zap.Logger {
	return New(os.Getenv("JSONLS_LOG"))
}

func parseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
