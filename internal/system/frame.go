package system

import (
	"time"

	coresys "github.com/flandre-go/flandre/internal/core/system"
	"github.com/flandre-go/flandre/internal/gfx"
	"github.com/flandre-go/flandre/internal/input"
)

// Scripts is the part of scripting.Engine the frame drives.
type Scripts interface {
	Update() error
	Draw() error
}

// UpdateSystem runs the iterate hook and the entity update pass.
// Phase 2 (Update).
type UpdateSystem struct {
	scripts Scripts
}

func NewUpdateSystem(scripts Scripts) *UpdateSystem {
	return &UpdateSystem{scripts: scripts}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(_ time.Duration) error {
	return s.scripts.Update()
}

// DrawSystem brackets the draw hook and the entity draw pass with a backend
// frame. Phase 3 (Draw).
type DrawSystem struct {
	scripts Scripts
	backend gfx.Backend
}

func NewDrawSystem(scripts Scripts, backend gfx.Backend) *DrawSystem {
	return &DrawSystem{scripts: scripts, backend: backend}
}

func (s *DrawSystem) Phase() coresys.Phase { return coresys.PhaseDraw }

func (s *DrawSystem) Update(_ time.Duration) error {
	s.backend.BeginFrame()
	err := s.scripts.Draw()
	s.backend.EndFrame()
	return err
}

// CleanupSystem forgets key presses that fell out of the hold window.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	state *input.State
	now   func() time.Time
}

func NewCleanupSystem(state *input.State, now func() time.Time) *CleanupSystem {
	if now == nil {
		now = time.Now
	}
	return &CleanupSystem{state: state, now: now}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) error {
	s.state.Expire(s.now())
	return nil
}
