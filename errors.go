package junction

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the controller
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Controller configuration is invalid
	ErrCodeInvalidConfiguration
	// Lane or axis name is not recognised
	ErrCodeUnknownLane
	// Queue holds a negative count
	ErrCodeNegativeQueue
	// Control loop is already running
	ErrCodeAlreadyRunning
)

// ConfigurationError represents invalid controller configuration
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// LaneError reports a lane or axis name that could not be parsed
type LaneError struct {
	Kind string
	Name string
}

func (e *LaneError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// NewLaneError creates a new lane error. kind is "lane" or "axis".
func NewLaneError(kind, name string) *LaneError {
	return &LaneError{
		Kind: kind,
		Name: name,
	}
}

// QueueError reports a negative queue count
type QueueError struct {
	Lane  Lane
	Count int
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error [%s]: count %d is negative", e.Lane, e.Count)
}

// NewQueueError creates a new queue error
func NewQueueError(lane Lane, count int) *QueueError {
	return &QueueError{
		Lane:  lane,
		Count: count,
	}
}

// ControllerError represents control loop operation errors
type ControllerError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("controller error during %s: %s", e.Operation, e.Message)
}

// NewAlreadyRunningError creates the error returned when a second control
// loop is started on the same controller
func NewAlreadyRunningError(operation string) *ControllerError {
	return &ControllerError{
		Code:      ErrCodeAlreadyRunning,
		Operation: operation,
		Message:   "control loop is already running",
	}
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsLaneError checks if an error is a LaneError
func IsLaneError(err error) bool {
	var target *LaneError
	return errors.As(err, &target)
}

// IsQueueError checks if an error is a QueueError
func IsQueueError(err error) bool {
	var target *QueueError
	return errors.As(err, &target)
}

// IsControllerError checks if an error is a ControllerError
func IsControllerError(err error) bool {
	var target *ControllerError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		configErr     *ConfigurationError
		laneErr       *LaneError
		queueErr      *QueueError
		controllerErr *ControllerError
	)
	switch {
	case errors.As(err, &controllerErr):
		return controllerErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &laneErr):
		return ErrCodeUnknownLane
	case errors.As(err, &queueErr):
		return ErrCodeNegativeQueue
	default:
		return ErrCodeNone
	}
}

// IsInterrupted reports whether err means the control loop was stopped
// through its context rather than failing
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
