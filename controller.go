package junction

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a consistent copy of the controller's published state
type Snapshot struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Queues  QueueState  `json:"queues"`
	Signals SignalState `json:"signals"`
	Axis    Axis        `json:"axis"`
	Started bool        `json:"started"`
	Cycle   uint64      `json:"cycle"`
	PhaseID string      `json:"phase_id,omitempty"`
	TakenAt time.Time   `json:"taken_at"`
}

// Controller decides which axis of a four-way intersection gets right-of-way
// and models cars leaving and arriving while the decision is in effect.
//
// The control loop is the only writer. Every exported accessor returns a
// copy taken under the read lock, so readers never see a half-applied
// signal change or queue batch.
type Controller struct {
	id        string
	config    Config
	policy    Policy
	source    Source
	clock     Clock
	timer     *PhaseTimer
	observers *ObserverManager
	running   atomic.Bool

	mutex   sync.RWMutex
	queues  QueueState
	signals SignalState
	started bool
	cycle   uint64
	phaseID string
}

// newController creates a controller with all signals red
func newController(config Config, queues QueueState, policy Policy, source Source, clock Clock) *Controller {
	c := &Controller{
		id:        uuid.New().String(),
		config:    config,
		policy:    policy,
		source:    source,
		clock:     clock,
		timer:     config.phaseTimer(clock),
		observers: NewObserverManager(),
		queues:    queues,
		signals:   allRed(),
	}
	return c
}

// ID returns the unique identifier assigned at construction
func (c *Controller) ID() string {
	return c.id
}

// Name returns the configured intersection name
func (c *Controller) Name() string {
	return c.config.Name
}

// Config returns the controller configuration
func (c *Controller) Config() Config {
	return c.config
}

// AddObserver registers an observer
func (c *Controller) AddObserver(observer Observer) {
	c.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (c *Controller) RemoveObserver(observer Observer) {
	c.observers.RemoveObserver(observer)
}

// QueueLength returns the number of cars waiting on lane
func (c *Controller) QueueLength(lane Lane) int {
	if !lane.Valid() {
		return 0
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.queues[lane]
}

// SignalColor returns the color currently shown to lane
func (c *Controller) SignalColor(lane Lane) Color {
	if !lane.Valid() {
		return Red
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.signals[lane]
}

// Queues returns all four queue lengths read together
func (c *Controller) Queues() QueueState {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.queues
}

// Signals returns all four signal colors read together
func (c *Controller) Signals() SignalState {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.signals
}

// Snapshot returns queues, signals and phase bookkeeping read together
func (c *Controller) Snapshot() Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	axis, _ := c.signals.GreenAxis()
	return Snapshot{
		ID:      c.id,
		Name:    c.config.Name,
		Queues:  c.queues,
		Signals: c.signals,
		Axis:    axis,
		Started: c.started,
		Cycle:   c.cycle,
		PhaseID: c.phaseID,
		TakenAt: c.clock.Now(),
	}
}

// MarshalJSON encodes the current snapshot
func (c *Controller) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// Run executes the control loop until ctx is done. It never returns nil.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return NewAlreadyRunningError("Run")
	}
	defer c.running.Store(false)

	for {
		if err := c.step(ctx); err != nil {
			c.observers.NotifyError(err)
			return err
		}
	}
}

// RunCycles executes n iterations of the control loop
func (c *Controller) RunCycles(ctx context.Context, n int) error {
	if !c.running.CompareAndSwap(false, true) {
		return NewAlreadyRunningError("RunCycles")
	}
	defer c.running.Store(false)

	for i := 0; i < n; i++ {
		if err := c.step(ctx); err != nil {
			c.observers.NotifyError(err)
			return err
		}
	}
	return nil
}

// Step executes a single iteration of the control loop
func (c *Controller) Step(ctx context.Context) error {
	return c.RunCycles(ctx, 1)
}

// Running reports whether a control loop is active
func (c *Controller) Running() bool {
	return c.running.Load()
}

func (c *Controller) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	axis := c.policy(c.Queues())
	event := c.grant(axis)
	c.observers.NotifyPhaseStart(event)

	result, err := c.timer.Run(ctx, axis, c.Queues)
	if err != nil {
		return err
	}
	c.observers.NotifyPhaseEnd(event, result)

	leaving := c.config.Departures.Draw(c.source)
	c.observers.NotifyDeparture(c.depart(event, leaving))

	var arrivals [NumLanes]int
	for _, lane := range Lanes {
		arrivals[lane] = c.config.Arrivals.Draw(c.source)
	}
	c.observers.NotifyArrival(c.arrive(event, arrivals))

	c.observers.NotifyCycleComplete(c.Snapshot())

	return c.clock.Sleep(ctx, c.config.CycleDelay)
}

// grant switches the signals to axis in one write
func (c *Controller) grant(axis Axis) PhaseEvent {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.signals = greenFor(axis)
	c.started = true
	c.cycle++
	c.phaseID = uuid.New().String()

	return PhaseEvent{
		ID:        c.phaseID,
		Cycle:     c.cycle,
		Axis:      axis,
		Queues:    c.queues,
		StartedAt: c.clock.Now(),
	}
}

// depart lets count cars leave each lane of the phase axis
func (c *Controller) depart(event PhaseEvent, count int) QueueChange {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	change := QueueChange{
		PhaseID: event.ID,
		Cycle:   event.Cycle,
		Kind:    Departure,
		Axis:    event.Axis,
		Before:  c.queues,
	}
	for _, lane := range event.Axis.Lanes() {
		change.Counts[lane] = count
	}
	c.queues.Depart(event.Axis, count)
	change.After = c.queues
	return change
}

// arrive adds one batch of arrivals to every lane
func (c *Controller) arrive(event PhaseEvent, counts [NumLanes]int) QueueChange {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	change := QueueChange{
		PhaseID: event.ID,
		Cycle:   event.Cycle,
		Kind:    Arrival,
		Axis:    event.Axis,
		Counts:  counts,
		Before:  c.queues,
	}
	for _, lane := range Lanes {
		c.queues.Arrive(lane, counts[lane])
	}
	change.After = c.queues
	return change
}
