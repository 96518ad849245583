package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/core/event"
	coresys "github.com/flandre-go/flandre/internal/core/system"
	"github.com/flandre-go/flandre/internal/persist"
)

// EventSystem delivers the events emitted during the previous frame.
// Phase 1 (PreUpdate).
type EventSystem struct {
	bus *event.Bus
	log *zap.Logger
}

func NewEventSystem(bus *event.Bus, log *zap.Logger) *EventSystem {
	return &EventSystem{bus: bus, log: log}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) error {
	if s.bus.Pending() == 0 {
		return nil
	}
	s.bus.SwapBuffers()
	n := s.bus.DispatchAll()
	s.log.Debug("frame events delivered", zap.Int("events", n))
	return nil
}

// FailureRecorder is the journal side of the failure reporter.
type FailureRecorder interface {
	Record(row persist.FailureRow) bool
}

// RecordFailures forwards every suspended entity to rec.
func RecordFailures(bus *event.Bus, rec FailureRecorder, now func() time.Time, log *zap.Logger) {
	if now == nil {
		now = time.Now
	}
	event.Subscribe(bus, func(ev event.EntitySuspended) {
		if !rec.Record(persist.RowFromEvent(ev, now())) {
			log.Debug("entity failure not journaled", zap.Uint64("entity", uint64(ev.Failure.Handle)))
		}
	})
}

// TrackResize calls sync whenever the terminal reports a new size.
func TrackResize(bus *event.Bus, sync func()) {
	event.Subscribe(bus, func(event.WindowResized) { sync() })
}
