package event

import "github.com/flandre-go/flandre/internal/core/ecs"

// EntitySuspended is emitted when an entity callback fails and the entity is
// taken out of dispatch.
type EntitySuspended struct {
	Failure    ecs.Failure
	ScriptHash string // blake2b of the loaded script set, hex
}

// TerminateRequested is emitted by flandre.system.terminate().
type TerminateRequested struct{}

// WindowResized is emitted when the backend reports a new size.
type WindowResized struct {
	Width, Height int
}
