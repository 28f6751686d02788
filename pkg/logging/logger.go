// Package logging builds the structured loggers used by the controller's
// observers and the driver.
package logging

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr's V. Higher is chattier.
const (
	DEFAULT = 0
	VERBOSE = 1
	DEBUG   = 2
	TRACE   = 3
)

// ParseLevel accepts a level name (info, verbose, debug, trace) or a
// non-negative verbosity number and returns the logr verbosity.
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info", "default":
		return DEFAULT, nil
	case "verbose":
		return VERBOSE, nil
	case "debug":
		return DEBUG, nil
	case "trace":
		return TRACE, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(level))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return v, nil
}

// NewLogger creates a zap-backed logr.Logger that emits V(0) through V(level)
func NewLogger(level string, development bool) (logr.Logger, error) {
	v, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))
	config.DisableStacktrace = !development

	zapLog, err := config.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build zap logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}

// NewTestLogger creates a development logger with every verbosity enabled
func NewTestLogger() logr.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))
	zapLog, err := config.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog)
}
