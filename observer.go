package junction

import (
	"fmt"
	"sync"
	"time"
)

// PhaseEvent describes a green phase that has just been granted
type PhaseEvent struct {
	ID        string     `json:"id"`
	Cycle     uint64     `json:"cycle"`
	Axis      Axis       `json:"axis"`
	Queues    QueueState `json:"queues"`
	StartedAt time.Time  `json:"started_at"`
}

// ChangeKind tells departures from arrivals
type ChangeKind int

const (
	// Departure is a batch of cars leaving the green axis
	Departure ChangeKind = iota
	// Arrival is a batch of cars joining every lane
	Arrival
)

func (k ChangeKind) String() string {
	if k == Arrival {
		return "arrival"
	}
	return "departure"
}

// MarshalText encodes the kind by name
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// QueueChange describes one departure or arrival batch
type QueueChange struct {
	PhaseID string        `json:"phase_id"`
	Cycle   uint64        `json:"cycle"`
	Kind    ChangeKind    `json:"kind"`
	Axis    Axis          `json:"axis"`
	Counts  [NumLanes]int `json:"counts"`
	Before  QueueState    `json:"before"`
	After   QueueState    `json:"after"`
}

// Observer represents an entity that observes the control loop
type Observer interface {
	// Required methods

	// OnPhaseStart is called after the signals switch to a new green axis
	OnPhaseStart(event PhaseEvent)

	// OnPhaseEnd is called when the phase timer returns
	OnPhaseEnd(event PhaseEvent, result PhaseResult)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnDeparture is called after cars leave the green axis
	OnDeparture(change QueueChange)

	// OnArrival is called after cars join the lanes
	OnArrival(change QueueChange)

	// OnCycleComplete is called at the end of every control loop iteration
	OnCycleComplete(snapshot Snapshot)

	// OnError is called when an observer panics and when the control loop
	// stops on its context. Use IsInterrupted to tell the two apart.
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnPhaseStart implements the required Observer method
func (o *BaseObserver) OnPhaseStart(event PhaseEvent) {}

// OnPhaseEnd implements the required Observer method
func (o *BaseObserver) OnPhaseEnd(event PhaseEvent, result PhaseResult) {}

// OnDeparture implements the optional ExtendedObserver method
func (o *BaseObserver) OnDeparture(change QueueChange) {}

// OnArrival implements the optional ExtendedObserver method
func (o *BaseObserver) OnArrival(change QueueChange) {}

// OnCycleComplete implements the optional ExtendedObserver method
func (o *BaseObserver) OnCycleComplete(snapshot Snapshot) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()

	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()

	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// each calls fn for every observer. A panicking observer is reported to
// itself through OnError, if it can receive it, and never reaches the loop.
func (om *ObserverManager) each(callback string, fn func(Observer)) {
	for _, observer := range om.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", callback, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

func (om *ObserverManager) eachExtended(callback string, fn func(ExtendedObserver)) {
	om.each(callback, func(observer Observer) {
		if extObs, ok := observer.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyPhaseStart notifies all observers of a new green phase
func (om *ObserverManager) NotifyPhaseStart(event PhaseEvent) {
	om.each("OnPhaseStart", func(o Observer) { o.OnPhaseStart(event) })
}

// NotifyPhaseEnd notifies all observers that a green phase ended
func (om *ObserverManager) NotifyPhaseEnd(event PhaseEvent, result PhaseResult) {
	om.each("OnPhaseEnd", func(o Observer) { o.OnPhaseEnd(event, result) })
}

// NotifyDeparture notifies all observers of a departure batch
func (om *ObserverManager) NotifyDeparture(change QueueChange) {
	om.eachExtended("OnDeparture", func(o ExtendedObserver) { o.OnDeparture(change) })
}

// NotifyArrival notifies all observers of an arrival batch
func (om *ObserverManager) NotifyArrival(change QueueChange) {
	om.eachExtended("OnArrival", func(o ExtendedObserver) { o.OnArrival(change) })
}

// NotifyCycleComplete notifies all observers that an iteration finished
func (om *ObserverManager) NotifyCycleComplete(snapshot Snapshot) {
	om.eachExtended("OnCycleComplete", func(o ExtendedObserver) { o.OnCycleComplete(snapshot) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	om.eachExtended("OnError", func(o ExtendedObserver) { o.OnError(err) })
}
