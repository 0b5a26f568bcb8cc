// Package logger configures the global zap logger for the gateway.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// LogLevel holds the runtime-adjustable log level.
	LogLevel = zap.NewAtomicLevel()
	// Logger is the process-wide logger. It is a no-op until Init is called,
	// which keeps package-level code and tests safe to run without setup.
	Logger = zap.NewNop()
)

// Init builds the global JSON logger with the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func Init(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	LogLevel.SetLevel(lvl)

	cfg := zap.NewProductionConfig()
	cfg.Level = LogLevel
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	Logger = logger
	zap.ReplaceGlobals(Logger)
}
