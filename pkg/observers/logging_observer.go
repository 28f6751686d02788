// Package observers provides observers for monitoring the intersection controller
package observers

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/logging"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only observer errors
	LogError LogLevel = iota
	// LogInfo logs phase changes
	LogInfo
	// LogDebug logs phase changes, departures and arrivals
	LogDebug
	// LogTrace logs everything including per-cycle snapshots
	LogTrace
)

// LoggingObserver writes controller activity to a logr.Logger
type LoggingObserver struct {
	level  LogLevel
	logger logr.Logger
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer. A non-empty prefix is
// added to the logger name.
func NewLoggingObserver(logger logr.Logger, level LogLevel, prefix string) *LoggingObserver {
	if prefix != "" {
		logger = logger.WithName(prefix)
	}
	return &LoggingObserver{
		level:  level,
		logger: logger,
	}
}

// SetLevel changes the logging level
func (o *LoggingObserver) SetLevel(level LogLevel) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

func (o *LoggingObserver) enabled(level LogLevel) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return level <= o.level
}

// OnPhaseStart logs the newly granted axis
func (o *LoggingObserver) OnPhaseStart(event junction.PhaseEvent) {
	if !o.enabled(LogInfo) {
		return
	}
	o.logger.Info("Green light is on",
		"axis", event.Axis.String(),
		"cycle", event.Cycle,
		"phase", event.ID,
		"queues", event.Queues.String())
}

// OnPhaseEnd logs whether the phase cleared early or ran its full length
func (o *LoggingObserver) OnPhaseEnd(event junction.PhaseEvent, result junction.PhaseResult) {
	if !o.enabled(LogInfo) {
		return
	}
	msg := "Green phase timed out, switching light"
	if result.Outcome == junction.PhaseCleared {
		msg = "Traffic cleared, switching light"
	}
	o.logger.Info(msg,
		"axis", result.Axis.String(),
		"cycle", event.Cycle,
		"elapsed", result.Elapsed.String(),
		"polls", result.Polls)
}

// OnDeparture logs cars leaving the green axis
func (o *LoggingObserver) OnDeparture(change junction.QueueChange) {
	if !o.enabled(LogDebug) {
		return
	}
	lanes := change.Axis.Lanes()
	o.logger.V(logging.VERBOSE).Info("Cars left",
		"axis", change.Axis.String(),
		"cars", change.Counts[lanes[0]],
		"cycle", change.Cycle)
}

// OnArrival logs cars joining each lane
func (o *LoggingObserver) OnArrival(change junction.QueueChange) {
	if !o.enabled(LogDebug) {
		return
	}
	for _, lane := range junction.Lanes {
		if n := change.Counts[lane]; n > 0 {
			o.logger.V(logging.VERBOSE).Info("Cars arrived", "lane", lane.String(), "cars", n, "cycle", change.Cycle)
		}
	}
}

// OnCycleComplete logs the state at the end of each cycle
func (o *LoggingObserver) OnCycleComplete(snapshot junction.Snapshot) {
	if !o.enabled(LogTrace) {
		return
	}
	o.logger.V(logging.DEBUG).Info("Cycle complete",
		"cycle", snapshot.Cycle,
		"axis", snapshot.Axis.String(),
		"queues", snapshot.Queues.String())
}

// OnError logs errors. A cancelled loop is logged as a normal stop.
func (o *LoggingObserver) OnError(err error) {
	if junction.IsInterrupted(err) {
		o.logger.Info("Control loop stopped", "reason", err.Error())
		return
	}
	o.logger.Error(err, "Controller observer error")
}
