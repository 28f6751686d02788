package junction

// Policy chooses the axis that receives the next green phase. It must not
// modify anything and may be called concurrently.
type Policy func(queues QueueState) Axis

// Decide gives the green phase to the axis with more waiting cars. Equal
// totals go to TopBottom.
func Decide(queues QueueState) Axis {
	if queues.Sum(LeftRight) > queues.Sum(TopBottom) {
		return LeftRight
	}
	return TopBottom
}
