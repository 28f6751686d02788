package junction

import (
	"encoding/json"
	"fmt"
)

// QueueState holds the number of cars waiting on each lane
type QueueState [NumLanes]int

// Len returns the number of cars waiting on lane
func (q QueueState) Len(lane Lane) int {
	return q[lane]
}

// Sum returns the total number of cars waiting on both lanes of axis
func (q QueueState) Sum(axis Axis) int {
	lanes := axis.Lanes()
	return q[lanes[0]] + q[lanes[1]]
}

// Total returns the number of cars waiting at the whole intersection
func (q QueueState) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// Depart removes count cars from each lane of axis. Each lane is clamped
// at zero on its own.
func (q *QueueState) Depart(axis Axis, count int) {
	if count <= 0 {
		return
	}
	for _, lane := range axis.Lanes() {
		q[lane] = max(0, q[lane]-count)
	}
}

// Arrive adds count cars to lane
func (q *QueueState) Arrive(lane Lane, count int) {
	if count <= 0 {
		return
	}
	q[lane] += count
}

// Validate checks that no lane holds a negative count
func (q QueueState) Validate() error {
	for _, lane := range Lanes {
		if q[lane] < 0 {
			return NewQueueError(lane, q[lane])
		}
	}
	return nil
}

func (q QueueState) String() string {
	return fmt.Sprintf("left=%d right=%d top=%d bottom=%d", q[Left], q[Right], q[Top], q[Bottom])
}

// MarshalJSON encodes the queues as an object keyed by lane name
func (q QueueState) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, NumLanes)
	for _, lane := range Lanes {
		out[lane.String()] = q[lane]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by lane name. Missing lanes are zero.
func (q *QueueState) UnmarshalJSON(data []byte) error {
	var in map[string]int
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out QueueState
	for name, n := range in {
		lane, err := ParseLane(name)
		if err != nil {
			return err
		}
		out[lane] = n
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*q = out
	return nil
}
