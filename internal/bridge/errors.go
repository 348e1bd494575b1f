package bridge

import "errors"

var (
	// ErrPublish wraps any MQTT publish failure. It ends Scheduler.Run.
	ErrPublish = errors.New("bridge: publish failed")

	// ErrQueueFull is returned when the command inbox cannot accept another
	// command. The inbox stays failed and Scheduler.Run returns the error.
	ErrQueueFull = errors.New("bridge: command queue full")

	// ErrMissingDependency is returned by NewScheduler when a required
	// collaborator is nil.
	ErrMissingDependency = errors.New("bridge: missing dependency")
)
