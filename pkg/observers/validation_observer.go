package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/junction"
)

// ValidationObserver checks controller invariants on every callback and
// records violations instead of failing
type ValidationObserver struct {
	policy     junction.Policy
	departures junction.Range
	arrivals   junction.Range
	violations []string
	phases     map[junction.Axis]int
	mutex      sync.RWMutex
}

// NewValidationObserver creates a validation observer that also checks
// decisions against policy and batch sizes against the given ranges
func NewValidationObserver(policy junction.Policy, departures, arrivals junction.Range) *ValidationObserver {
	return &ValidationObserver{
		policy:     policy,
		departures: departures,
		arrivals:   arrivals,
		violations: make([]string, 0),
		phases:     make(map[junction.Axis]int),
	}
}

// NewDefaultValidationObserver validates against the default policy and ranges
func NewDefaultValidationObserver() *ValidationObserver {
	return NewValidationObserver(junction.Decide, junction.DefaultDepartures, junction.DefaultArrivals)
}

// addViolation adds a violation
func (o *ValidationObserver) addViolation(format string, args ...interface{}) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

func (o *ValidationObserver) checkQueues(where string, queues junction.QueueState) {
	if err := queues.Validate(); err != nil {
		o.addViolation("%s: %v", where, err)
	}
}

// OnPhaseStart checks the decision against the policy
func (o *ValidationObserver) OnPhaseStart(event junction.PhaseEvent) {
	o.checkQueues("phase start", event.Queues)

	if o.policy != nil {
		if want := o.policy(event.Queues); want != event.Axis {
			o.addViolation("cycle %d: granted %s but policy chose %s for %s", event.Cycle, event.Axis, want, event.Queues)
		}
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.phases[event.Axis]++
}

// OnPhaseEnd checks that the result belongs to the started phase
func (o *ValidationObserver) OnPhaseEnd(event junction.PhaseEvent, result junction.PhaseResult) {
	if result.Axis != event.Axis {
		o.addViolation("cycle %d: phase for %s ended as %s", event.Cycle, event.Axis, result.Axis)
	}
	if result.Elapsed < 0 {
		o.addViolation("cycle %d: negative phase length %s", event.Cycle, result.Elapsed)
	}
}

// OnDeparture checks that one draw was applied to both green lanes and clamped
func (o *ValidationObserver) OnDeparture(change junction.QueueChange) {
	o.checkQueues("departure", change.After)

	lanes := change.Axis.Lanes()
	count := change.Counts[lanes[0]]
	if change.Counts[lanes[1]] != count {
		o.addViolation("cycle %d: departures differ across %s: %v", change.Cycle, change.Axis, change.Counts)
	}
	if !o.departures.Contains(count) {
		o.addViolation("cycle %d: departure %d outside %s", change.Cycle, count, o.departures)
	}
	for _, lane := range lanes {
		if want := max(0, change.Before[lane]-count); change.After[lane] != want {
			o.addViolation("cycle %d: %s went from %d to %d after %d departures", change.Cycle, lane, change.Before[lane], change.After[lane], count)
		}
	}
	for _, lane := range change.Axis.Other().Lanes() {
		if change.Before[lane] != change.After[lane] {
			o.addViolation("cycle %d: red lane %s changed on departure", change.Cycle, lane)
		}
	}
}

// OnArrival checks that every lane received one draw
func (o *ValidationObserver) OnArrival(change junction.QueueChange) {
	o.checkQueues("arrival", change.After)

	for _, lane := range junction.Lanes {
		n := change.Counts[lane]
		if !o.arrivals.Contains(n) {
			o.addViolation("cycle %d: arrival %d on %s outside %s", change.Cycle, n, lane, o.arrivals)
		}
		if change.After[lane] != change.Before[lane]+n {
			o.addViolation("cycle %d: %s went from %d to %d after %d arrivals", change.Cycle, lane, change.Before[lane], change.After[lane], n)
		}
	}
}

// OnCycleComplete checks axis exclusivity on the published snapshot
func (o *ValidationObserver) OnCycleComplete(snapshot junction.Snapshot) {
	o.checkQueues("cycle", snapshot.Queues)

	if !snapshot.Signals.Consistent() {
		o.addViolation("cycle %d: inconsistent signals %v", snapshot.Cycle, snapshot.Signals)
		return
	}
	if _, ok := snapshot.Signals.GreenAxis(); !ok {
		o.addViolation("cycle %d: no green axis", snapshot.Cycle)
	}
}

// OnError validates error handling
func (o *ValidationObserver) OnError(err error) {
	if junction.IsInterrupted(err) {
		return
	}
	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetPhaseCounts returns how many phases each axis received
func (o *ValidationObserver) GetPhaseCounts() map[junction.Axis]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[junction.Axis]int, len(o.phases))
	for axis, n := range o.phases {
		result[axis] = n
	}
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.violations = make([]string, 0)
	o.phases = make(map[junction.Axis]int)
}
