package junction

import (
	"time"
)

// Builder provides the main entry point for configuring a controller
type Builder interface {
	Name(name string) Builder
	Config(config Config) Builder

	// Timing
	TimeUnit(unit time.Duration) Builder // Resets every duration to its default in this unit
	GreenDuration(d time.Duration) Builder
	PollInterval(d time.Duration) Builder
	CycleDelay(d time.Duration) Builder

	// Traffic
	Queues(queues QueueState) Builder
	ClearanceThreshold(cars int) Builder
	Departures(r Range) Builder
	Arrivals(r Range) Builder

	// Collaborators
	Policy(policy Policy) Builder
	Source(source Source) Builder
	Seed(seed int64) Builder
	Clock(clock Clock) Builder
	Observer(observer Observer) Builder

	Build() (*Controller, error)
}

type builderImpl struct {
	config    Config
	queues    QueueState
	policy    Policy
	source    Source
	clock     Clock
	observers []Observer
}

// NewBuilder creates a builder holding the default configuration
func NewBuilder() Builder {
	return &builderImpl{
		config: DefaultConfig(),
		policy: Decide,
	}
}

func (b *builderImpl) Name(name string) Builder {
	b.config.Name = name
	return b
}

func (b *builderImpl) Config(config Config) Builder {
	b.config = config
	return b
}

func (b *builderImpl) TimeUnit(unit time.Duration) Builder {
	scaled := ConfigForTimeUnit(unit)
	b.config.GreenDuration = scaled.GreenDuration
	b.config.PollInterval = scaled.PollInterval
	b.config.CycleDelay = scaled.CycleDelay
	return b
}

func (b *builderImpl) GreenDuration(d time.Duration) Builder {
	b.config.GreenDuration = d
	return b
}

func (b *builderImpl) PollInterval(d time.Duration) Builder {
	b.config.PollInterval = d
	return b
}

func (b *builderImpl) CycleDelay(d time.Duration) Builder {
	b.config.CycleDelay = d
	return b
}

func (b *builderImpl) Queues(queues QueueState) Builder {
	b.queues = queues
	return b
}

func (b *builderImpl) ClearanceThreshold(cars int) Builder {
	b.config.ClearanceThreshold = cars
	return b
}

func (b *builderImpl) Departures(r Range) Builder {
	b.config.Departures = r
	return b
}

func (b *builderImpl) Arrivals(r Range) Builder {
	b.config.Arrivals = r
	return b
}

func (b *builderImpl) Policy(policy Policy) Builder {
	b.policy = policy
	return b
}

func (b *builderImpl) Source(source Source) Builder {
	b.source = source
	return b
}

func (b *builderImpl) Seed(seed int64) Builder {
	b.source = NewSource(seed)
	return b
}

func (b *builderImpl) Clock(clock Clock) Builder {
	b.clock = clock
	return b
}

func (b *builderImpl) Observer(observer Observer) Builder {
	b.observers = append(b.observers, observer)
	return b
}

// Build validates the configuration and creates the controller
func (b *builderImpl) Build() (*Controller, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if err := b.queues.Validate(); err != nil {
		return nil, err
	}
	if b.policy == nil {
		return nil, NewConfigurationError("Policy", "no decision policy defined")
	}

	source := b.source
	if source == nil {
		source = newTimeSeededSource()
	}
	clock := b.clock
	if clock == nil {
		clock = SystemClock{}
	}

	c := newController(b.config, b.queues, b.policy, source, clock)
	for _, observer := range b.observers {
		c.AddObserver(observer)
	}
	return c, nil
}
