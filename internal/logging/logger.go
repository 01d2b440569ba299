// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log level.
type Options struct {
	Verbose bool // debug level
	Quiet   bool // warnings and errors only; used by the interactive REPL
}

// New builds a production (JSON, stderr) logger and installs it as the zap
// global so packages without an injected logger still log consistently.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level(opts))
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func level(opts Options) zapcore.Level {
	switch {
	case opts.Verbose:
		return zapcore.DebugLevel
	case opts.Quiet:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
