package system

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/core/event"
	coresys "github.com/flandre-go/flandre/internal/core/system"
	"github.com/flandre-go/flandre/internal/input"
)

// EventQueue is the drain side of input.Poller.
type EventQueue interface {
	Drain(fn func(tcell.Event)) int
}

// InputSystem drains queued terminal events into the input state.
// Phase 0 (Input).
type InputSystem struct {
	queue EventQueue
	state *input.State
	bus   *event.Bus
	now   func() time.Time
	log   *zap.Logger
}

func NewInputSystem(queue EventQueue, state *input.State, bus *event.Bus, now func() time.Time, log *zap.Logger) *InputSystem {
	if now == nil {
		now = time.Now
	}
	return &InputSystem{queue: queue, state: state, bus: bus, now: now, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) error {
	now := s.now()
	s.queue.Drain(func(ev tcell.Event) { s.state.Apply(ev, now) })

	if w, h, ok := s.state.TakeResize(); ok {
		s.log.Debug("terminal resized", zap.Int("width", w), zap.Int("height", h))
		event.Emit(s.bus, event.WindowResized{Width: w, Height: h})
	}
	return nil
}
