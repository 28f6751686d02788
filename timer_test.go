package junction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimer(clock Clock) *PhaseTimer {
	return DefaultConfig().phaseTimer(clock)
}

func constantQueues(queues QueueState) func() QueueState {
	return func() QueueState { return queues }
}

func TestPhaseTimer(t *testing.T) {
	t.Run("Early clearance ends the phase before the green duration", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		queues := QueueState{Left: 1, Right: 2, Top: 9, Bottom: 9}
		result, err := timer.Run(context.Background(), TopBottom, constantQueues(queues))

		require.NoError(t, err)
		assert.Equal(t, PhaseCleared, result.Outcome)
		assert.Equal(t, TopBottom, result.Axis)
		assert.True(t, result.Elapsed < timer.GreenDuration, "elapsed %s", result.Elapsed)
		assert.Equal(t, 1, result.Polls)
	})

	t.Run("Clearance on the axis without green also ends the phase", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		queues := QueueState{Left: 9, Right: 9, Top: 0, Bottom: 4}
		result, err := timer.Run(context.Background(), LeftRight, constantQueues(queues))

		require.NoError(t, err)
		assert.Equal(t, PhaseCleared, result.Outcome)
	})

	t.Run("Phase times out when traffic never clears", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		queues := QueueState{Left: 5, Right: 5, Top: 5, Bottom: 5}
		result, err := timer.Run(context.Background(), TopBottom, constantQueues(queues))

		require.NoError(t, err)
		assert.Equal(t, PhaseTimedOut, result.Outcome)
		assert.True(t, result.Elapsed >= timer.GreenDuration, "elapsed %s", result.Elapsed)
		assert.Equal(t, 10*time.Second, result.Elapsed)
		assert.Equal(t, 10, result.Polls)
	})

	t.Run("Threshold comparison is strict", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		queues := QueueState{Left: 3, Right: 2, Top: 4, Bottom: 1}
		result, err := timer.Run(context.Background(), LeftRight, constantQueues(queues))

		require.NoError(t, err)
		assert.Equal(t, PhaseTimedOut, result.Outcome)
	})

	t.Run("Clearance during the phase is seen at the next poll", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		reads := 0
		read := func() QueueState {
			reads++
			if reads > 3 {
				return QueueState{Left: 1, Right: 1, Top: 9, Bottom: 9}
			}
			return QueueState{Left: 9, Right: 9, Top: 9, Bottom: 9}
		}

		result, err := timer.Run(context.Background(), LeftRight, read)

		require.NoError(t, err)
		assert.Equal(t, PhaseCleared, result.Outcome)
		assert.Equal(t, 3*time.Second, result.Elapsed)
		assert.Equal(t, 4, result.Polls)
	})

	t.Run("Polls once per poll interval", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		_, err := timer.Run(context.Background(), LeftRight, constantQueues(QueueState{9, 9, 9, 9}))

		require.NoError(t, err)
		assert.Equal(t, 10, clock.Sleeps())
		assert.Equal(t, timer.GreenDuration, clock.Slept())
	})

	t.Run("Cancelled context interrupts the wait", func(t *testing.T) {
		clock := NewManualClock(time.Unix(0, 0))
		timer := newTestTimer(clock)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := timer.Run(ctx, LeftRight, constantQueues(QueueState{9, 9, 9, 9}))

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, PhaseTimedOut, result.Outcome)
		assert.Equal(t, time.Duration(0), result.Elapsed)
	})

	t.Run("Wall clock timeout", func(t *testing.T) {
		timer := &PhaseTimer{
			GreenDuration:      30 * time.Millisecond,
			PollInterval:       5 * time.Millisecond,
			ClearanceThreshold: DefaultClearanceThreshold,
		}

		start := time.Now()
		result, err := timer.Run(context.Background(), TopBottom, constantQueues(QueueState{9, 9, 9, 9}))

		require.NoError(t, err)
		assert.Equal(t, PhaseTimedOut, result.Outcome)
		assert.True(t, time.Since(start) >= timer.GreenDuration)
		assert.True(t, result.Elapsed >= timer.GreenDuration, "elapsed %s", result.Elapsed)
	})
}

func TestPhaseTimer_Cleared(t *testing.T) {
	timer := &PhaseTimer{ClearanceThreshold: 5}

	assert.True(t, timer.Cleared(QueueState{Left: 3, Right: 0, Top: 10, Bottom: 10}))
	assert.True(t, timer.Cleared(QueueState{Left: 10, Right: 10, Top: 2, Bottom: 2}))
	assert.False(t, timer.Cleared(QueueState{Left: 5, Right: 0, Top: 0, Bottom: 5}))
}
