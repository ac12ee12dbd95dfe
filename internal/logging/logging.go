// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel overrides the level picked from flags, e.g. SCOPEPATCH_LOG_LEVEL=debug.
const EnvLevel = "SCOPEPATCH_LOG_LEVEL"

// Options mirrors the global CLI flags.
type Options struct {
	Verbose bool // debug level
	JSON    bool // JSON encoder instead of console
}

// New returns a production-style logger writing to stderr. Without Verbose
// only warnings and errors are shown; stdout stays reserved for results.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Sampling = nil
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if !opts.JSON {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.DisableStacktrace = true
	}

	level, err := Level(opts.Verbose, os.Getenv(EnvLevel))
	if err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Level resolves the effective level. A non-empty env value wins over the
// verbose flag.
func Level(verbose bool, env string) (zapcore.Level, error) {
	if env = strings.TrimSpace(env); env != "" {
		l, err := zapcore.ParseLevel(env)
		if err != nil {
			return zapcore.InfoLevel, fmt.Errorf("%s: %w", EnvLevel, err)
		}
		return l, nil
	}
	if verbose {
		return zapcore.DebugLevel, nil
	}
	return zapcore.WarnLevel, nil
}
