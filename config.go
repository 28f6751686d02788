package junction

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeUnit is the real duration of one time-unit
	DefaultTimeUnit = time.Second
	// DefaultGreenUnits is the longest green phase, in time-units
	DefaultGreenUnits = 10
	// DefaultPollUnits is the clearance polling interval, in time-units
	DefaultPollUnits = 1
	// DefaultCycleDelayUnits is the pause between cycles, in time-units
	DefaultCycleDelayUnits = 2
	// DefaultClearanceThreshold is the axis total below which a phase ends early
	DefaultClearanceThreshold = 5
)

var (
	// DefaultDepartures is the range of cars leaving each lane of the green axis per phase
	DefaultDepartures = Range{Min: 1, Max: 5}
	// DefaultArrivals is the range of cars arriving on each lane per cycle
	DefaultArrivals = Range{Min: 0, Max: 3}
)

// Config holds controller timing and traffic parameters
type Config struct {
	Name               string
	GreenDuration      time.Duration
	PollInterval       time.Duration
	CycleDelay         time.Duration
	ClearanceThreshold int
	Departures         Range
	Arrivals           Range
}

// DefaultConfig returns the configuration with time-units of DefaultTimeUnit
func DefaultConfig() Config {
	return ConfigForTimeUnit(DefaultTimeUnit)
}

// ConfigForTimeUnit returns the default configuration scaled to unit
func ConfigForTimeUnit(unit time.Duration) Config {
	return Config{
		Name:               "intersection",
		GreenDuration:      DefaultGreenUnits * unit,
		PollInterval:       DefaultPollUnits * unit,
		CycleDelay:         DefaultCycleDelayUnits * unit,
		ClearanceThreshold: DefaultClearanceThreshold,
		Departures:         DefaultDepartures,
		Arrivals:           DefaultArrivals,
	}
}

// Validate checks the configuration for unusable values
func (c Config) Validate() error {
	if c.GreenDuration <= 0 {
		return NewConfigurationError("GreenDuration", fmt.Sprintf("must be positive, got %s", c.GreenDuration))
	}
	if c.PollInterval <= 0 {
		return NewConfigurationError("PollInterval", fmt.Sprintf("must be positive, got %s", c.PollInterval))
	}
	if c.CycleDelay < 0 {
		return NewConfigurationError("CycleDelay", fmt.Sprintf("must not be negative, got %s", c.CycleDelay))
	}
	if c.ClearanceThreshold < 0 {
		return NewConfigurationError("ClearanceThreshold", fmt.Sprintf("must not be negative, got %d", c.ClearanceThreshold))
	}
	if err := c.Departures.validate("Departures"); err != nil {
		return err
	}
	return c.Arrivals.validate("Arrivals")
}

func (c Config) phaseTimer(clock Clock) *PhaseTimer {
	return &PhaseTimer{
		GreenDuration:      c.GreenDuration,
		PollInterval:       c.PollInterval,
		ClearanceThreshold: c.ClearanceThreshold,
		Clock:              clock,
	}
}
