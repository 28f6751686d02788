package junction

import (
	"fmt"
	"math/rand"
	"time"
)

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a seeded Source. Sources are not safe for concurrent
// use; the control loop is their only caller.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

func newTimeSeededSource() Source {
	return NewSource(time.Now().UnixNano())
}

// Range is a closed integer interval
type Range struct {
	Min int
	Max int
}

// Draw returns a value drawn uniformly from [Min, Max]
func (r Range) Draw(src Source) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + src.Intn(r.Max-r.Min+1)
}

// Contains reports whether n lies inside the range
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

func (r Range) validate(component string) error {
	if r.Min < 0 {
		return NewConfigurationError(component, fmt.Sprintf("minimum %d is negative", r.Min))
	}
	if r.Max < r.Min {
		return NewConfigurationError(component, fmt.Sprintf("maximum %d is below minimum %d", r.Max, r.Min))
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}
