package observers

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/junction"
)

const subsystem = "intersection"

// MetricsObserver exports controller activity as Prometheus metrics
type MetricsObserver struct {
	phases        *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	departed      *prometheus.CounterVec
	arrived       *prometheus.CounterVec
	queueLength   *prometheus.GaugeVec
	greenAxis     *prometheus.GaugeVec
	cycles        prometheus.Counter
	errors        prometheus.Counter

	mutex       sync.RWMutex
	phaseCounts map[junction.Axis]map[junction.PhaseOutcome]int
	errorCount  int
}

// NewMetricsObserver creates a metrics observer. namespace prefixes every
// metric name and may be empty.
func NewMetricsObserver(namespace string) *MetricsObserver {
	return &MetricsObserver{
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phases_total",
				Help:      "Count of green phases by axis and how they ended.",
			},
			[]string{"axis", "outcome"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phase_duration_seconds",
				Help:      "Length of green phases in seconds.",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 15, 20, 30},
			},
			[]string{"axis"},
		),
		departed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cars_departed_total",
				Help:      "Cars that left a lane during its green phase.",
			},
			[]string{"lane"},
		),
		arrived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cars_arrived_total",
				Help:      "Cars that joined a lane's queue.",
			},
			[]string{"lane"},
		),
		queueLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_length",
				Help:      "Cars currently waiting on each lane.",
			},
			[]string{"lane"},
		),
		greenAxis: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "green_axis",
				Help:      "1 for the axis currently holding right-of-way, 0 otherwise.",
			},
			[]string{"axis"},
		),
		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycles_total",
				Help:      "Completed control loop iterations.",
			},
		),
		errors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "observer_errors_total",
				Help:      "Errors reported to observers.",
			},
		),
		phaseCounts: make(map[junction.Axis]map[junction.PhaseOutcome]int),
	}
}

// Collectors returns every metric owned by the observer
func (o *MetricsObserver) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		o.phases,
		o.phaseDuration,
		o.departed,
		o.arrived,
		o.queueLength,
		o.greenAxis,
		o.cycles,
		o.errors,
	}
}

// Register registers all metrics with reg
func (o *MetricsObserver) Register(reg prometheus.Registerer) error {
	for _, c := range o.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// OnPhaseStart records which axis is green
func (o *MetricsObserver) OnPhaseStart(event junction.PhaseEvent) {
	o.greenAxis.WithLabelValues(event.Axis.String()).Set(1)
	o.greenAxis.WithLabelValues(event.Axis.Other().String()).Set(0)
	o.setQueues(event.Queues)
}

// OnPhaseEnd records phase outcome and length
func (o *MetricsObserver) OnPhaseEnd(event junction.PhaseEvent, result junction.PhaseResult) {
	axis := result.Axis.String()
	o.phases.WithLabelValues(axis, result.Outcome.String()).Inc()
	o.phaseDuration.WithLabelValues(axis).Observe(result.Elapsed.Seconds())

	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.phaseCounts[result.Axis] == nil {
		o.phaseCounts[result.Axis] = make(map[junction.PhaseOutcome]int)
	}
	o.phaseCounts[result.Axis][result.Outcome]++
}

// OnDeparture records cars that actually left, after clamping
func (o *MetricsObserver) OnDeparture(change junction.QueueChange) {
	for _, lane := range change.Axis.Lanes() {
		o.departed.WithLabelValues(lane.String()).Add(float64(change.Before[lane] - change.After[lane]))
	}
	o.setQueues(change.After)
}

// OnArrival records cars joining each lane
func (o *MetricsObserver) OnArrival(change junction.QueueChange) {
	for _, lane := range junction.Lanes {
		o.arrived.WithLabelValues(lane.String()).Add(float64(change.Counts[lane]))
	}
	o.setQueues(change.After)
}

// OnCycleComplete counts finished iterations
func (o *MetricsObserver) OnCycleComplete(snapshot junction.Snapshot) {
	o.cycles.Inc()
	o.setQueues(snapshot.Queues)
}

// OnError records error metrics. Loop interruptions are not errors.
func (o *MetricsObserver) OnError(err error) {
	if junction.IsInterrupted(err) {
		return
	}
	o.errors.Inc()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

func (o *MetricsObserver) setQueues(queues junction.QueueState) {
	for _, lane := range junction.Lanes {
		o.queueLength.WithLabelValues(lane.String()).Set(float64(queues[lane]))
	}
}

// GetPhaseCounts returns the number of phases per axis and outcome
func (o *MetricsObserver) GetPhaseCounts() map[junction.Axis]map[junction.PhaseOutcome]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[junction.Axis]map[junction.PhaseOutcome]int)
	for axis, outcomes := range o.phaseCounts {
		result[axis] = make(map[junction.PhaseOutcome]int)
		for outcome, count := range outcomes {
			result[axis][outcome] = count
		}
	}
	return result
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.errorCount
}
