package junction

import (
	"sync"
	"testing"
	"time"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex       sync.RWMutex
	Calls       []string
	PhaseStarts []PhaseEvent
	PhaseEnds   []PhaseEndEvent
	Departures  []QueueChange
	Arrivals    []QueueChange
	Cycles      []Snapshot
	Errors      []error
}

// PhaseEndEvent pairs a phase with its result
type PhaseEndEvent struct {
	Phase  PhaseEvent
	Result PhaseResult
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{
		Calls:       make([]string, 0),
		PhaseStarts: make([]PhaseEvent, 0),
		PhaseEnds:   make([]PhaseEndEvent, 0),
		Departures:  make([]QueueChange, 0),
		Arrivals:    make([]QueueChange, 0),
		Cycles:      make([]Snapshot, 0),
		Errors:      make([]error, 0),
	}
}

// Observer interface implementations
func (o *TestObserver) OnPhaseStart(event PhaseEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnPhaseStart")
	o.PhaseStarts = append(o.PhaseStarts, event)
}

func (o *TestObserver) OnPhaseEnd(event PhaseEvent, result PhaseResult) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnPhaseEnd")
	o.PhaseEnds = append(o.PhaseEnds, PhaseEndEvent{Phase: event, Result: result})
}

// ExtendedObserver interface implementations
func (o *TestObserver) OnDeparture(change QueueChange) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnDeparture")
	o.Departures = append(o.Departures, change)
}

func (o *TestObserver) OnArrival(change QueueChange) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnArrival")
	o.Arrivals = append(o.Arrivals, change)
}

func (o *TestObserver) OnCycleComplete(snapshot Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnCycleComplete")
	o.Cycles = append(o.Cycles, snapshot)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = append(o.Calls, "OnError")
	o.Errors = append(o.Errors, err)
}

// Helper methods for test assertions
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Calls = nil
	o.PhaseStarts = nil
	o.PhaseEnds = nil
	o.Departures = nil
	o.Arrivals = nil
	o.Cycles = nil
	o.Errors = nil
}

func (o *TestObserver) CallSequence() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	calls := make([]string, len(o.Calls))
	copy(calls, o.Calls)
	return calls
}

func (o *TestObserver) CycleCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Cycles)
}

func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

func (o *TestObserver) LastPhaseEnd() *PhaseEndEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.PhaseEnds) == 0 {
		return nil
	}
	return &o.PhaseEnds[len(o.PhaseEnds)-1]
}

// Test controller builders - common configurations for testing

// CreateTestController creates a controller on a virtual clock with a fixed seed
func CreateTestController(t testing.TB, queues QueueState, seed int64) (*Controller, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(0, 0))
	c, err := NewBuilder().
		Name("test").
		Queues(queues).
		Seed(seed).
		Clock(clock).
		Build()
	if err != nil {
		t.Fatalf("Failed to build controller: %v", err)
	}
	return c, clock
}

// AssertSignalsExclusive fails the test unless exactly one axis is green
func AssertSignalsExclusive(t testing.TB, signals SignalState) {
	t.Helper()
	if !signals.Consistent() {
		t.Errorf("Expected consistent signals, got %v", signals)
		return
	}
	if _, ok := signals.GreenAxis(); !ok {
		t.Errorf("Expected one green axis, got all red")
	}
}

// AssertQueuesNonNegative fails the test if any lane is negative
func AssertQueuesNonNegative(t testing.TB, queues QueueState) {
	t.Helper()
	for _, lane := range Lanes {
		if queues[lane] < 0 {
			t.Errorf("Expected non-negative queue on %s, got %d", lane, queues[lane])
		}
	}
}
