package junction

import (
	"context"
	"sync"
	"time"
)

// Clock provides monotonic time and a cancellable sleep
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, in which case it returns ctx.Err()
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock
type SystemClock struct{}

// Now returns the current time with its monotonic reading
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d on a timer
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ManualClock is a virtual clock whose Sleep advances time immediately.
// It makes runs deterministic and lets simulations run faster than real time.
type ManualClock struct {
	mutex  sync.Mutex
	now    time.Time
	slept  time.Duration
	sleeps int
}

// NewManualClock creates a virtual clock starting at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the virtual time
func (c *ManualClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

// Sleep advances the virtual time by d without blocking
func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)

	c.mutex.Lock()
	c.sleeps++
	c.mutex.Unlock()
	return nil
}

// Advance moves the virtual time forward by d
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
	c.slept += d
}

// Slept returns the total virtual time advanced so far
func (c *ManualClock) Slept() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.slept
}

// Sleeps returns the number of Sleep calls made so far
func (c *ManualClock) Sleeps() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.sleeps
}
