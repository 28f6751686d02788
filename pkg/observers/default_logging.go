package observers

import "github.com/go-logr/logr"

// NewDefaultLoggingObserver creates a logging observer with default settings (LogInfo level)
func NewDefaultLoggingObserver(logger logr.Logger) *LoggingObserver {
	return NewLoggingObserver(logger, LogInfo, "intersection")
}
