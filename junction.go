// Package junction provides an adaptive controller for a four-way
// intersection. The controller grants right-of-way to one pair of opposing
// lanes at a time, choosing the pair with the longer combined queue, holds
// the green phase until traffic clears or the green duration runs out, and
// models cars leaving and arriving between decisions.
//
// A Controller is built with NewBuilder and driven by Run in its own
// goroutine. Displays, loggers and exporters read it through Snapshot and
// the other read-only accessors, or register an Observer.
package junction

import "time"

// Units converts a count of time-units into a duration
func Units(n int, unit time.Duration) time.Duration {
	return time.Duration(n) * unit
}
