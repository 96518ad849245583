package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain terminal events into input state
	PhasePreUpdate              // 1: deliver last frame's events
	PhaseUpdate                 // 2: global iterate hook + entity update pass
	PhaseDraw                   // 3: begin frame, draw hook + entity draw pass, present
	PhaseCleanup                // 4: end-of-frame bookkeeping
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhaseDraw:
		return "draw"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements. A returned error
// stops the frame loop; per-object script failures never surface here.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}
