package junction

import (
	"context"
	"time"
)

// PhaseOutcome describes why a green phase ended
type PhaseOutcome int

const (
	// PhaseTimedOut means the phase ran for the full green duration
	PhaseTimedOut PhaseOutcome = iota
	// PhaseCleared means traffic on either axis fell below the clearance threshold
	PhaseCleared
)

func (o PhaseOutcome) String() string {
	if o == PhaseCleared {
		return "cleared"
	}
	return "timeout"
}

// MarshalText encodes the outcome by name
func (o PhaseOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// PhaseResult reports how a green phase went
type PhaseResult struct {
	Axis    Axis          `json:"axis"`
	Outcome PhaseOutcome  `json:"outcome"`
	Elapsed time.Duration `json:"elapsed"`
	Polls   int           `json:"polls"`
}

// PhaseTimer holds an axis green for up to GreenDuration, polling the queues
// every PollInterval and ending early once either axis drops below
// ClearanceThreshold.
type PhaseTimer struct {
	GreenDuration      time.Duration
	PollInterval       time.Duration
	ClearanceThreshold int
	Clock              Clock
}

// Cleared reports whether queues satisfy the early exit condition
func (t *PhaseTimer) Cleared(queues QueueState) bool {
	return queues.Sum(LeftRight) < t.ClearanceThreshold || queues.Sum(TopBottom) < t.ClearanceThreshold
}

// Run blocks for the duration of the phase. read is called once per poll and
// must return a consistent copy of the queues. The returned error is non-nil
// only when ctx is done.
func (t *PhaseTimer) Run(ctx context.Context, axis Axis, read func() QueueState) (PhaseResult, error) {
	clock := t.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	result := PhaseResult{Axis: axis, Outcome: PhaseTimedOut}
	start := clock.Now()

	for clock.Now().Sub(start) < t.GreenDuration {
		result.Polls++
		if t.Cleared(read()) {
			result.Outcome = PhaseCleared
			break
		}
		if err := clock.Sleep(ctx, t.PollInterval); err != nil {
			result.Elapsed = clock.Now().Sub(start)
			return result, err
		}
	}

	result.Elapsed = clock.Now().Sub(start)
	return result, nil
}
