package ecs

import "errors"

var (
	// ErrOutOfMemory is returned by Create when the slot arena is at capacity.
	ErrOutOfMemory = errors.New("ecs: out of object slots")

	// ErrCorrupt reports a broken layer chain. Unreachable under correct usage.
	ErrCorrupt = errors.New("ecs: layer structure corrupted")

	// ErrDispatchInProgress is returned when Dispatch is re-entered from a callback.
	ErrDispatchInProgress = errors.New("ecs: dispatch already in progress")

	// ErrCallbackPanic wraps a panic recovered from an object callback.
	ErrCallbackPanic = errors.New("ecs: callback panicked")
)
