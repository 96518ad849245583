package ecs

import (
	"fmt"

	"go.uber.org/zap"
)

// Event selects which capability Dispatch invokes.
type Event uint8

const (
	EventUpdate Event = iota
	EventDraw
)

func (e Event) String() string {
	switch e {
	case EventUpdate:
		return "update"
	case EventDraw:
		return "draw"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// Failure describes one suspended object.
type Failure struct {
	Handle Handle
	Layer  int
	Event  Event
	Err    error
}

// Dispatch delivers ev to every active object, layers ascending and insertion
// order within a layer. A failing callback suspends its object (active=false)
// and the pass continues. Objects created during the pass are first visited by
// the next call. Only ErrCorrupt or ErrDispatchInProgress is returned.
func (r *Registry) Dispatch(ev Event) error {
	if r.dispatching {
		return ErrDispatchInProgress
	}
	r.dispatching = true
	r.pass++
	defer func() {
		r.dispatching = false
		r.cursor = nilIndex
	}()

	for li := range r.layers {
		if r.layers[li].empty() {
			continue
		}
		if err := r.dispatchLayer(li, ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) dispatchLayer(li int, ev Event) error {
	steps := 0
	idx := r.layers[li].first
	for idx != nilIndex {
		if int(idx) >= len(r.slots) {
			return fmt.Errorf("%w: layer %d cursor at slot %d out of range", ErrCorrupt, li, idx)
		}
		n := &r.slots[idx]
		if !n.live || int(n.layer) != li {
			return fmt.Errorf("%w: layer %d cursor at invalid slot %d", ErrCorrupt, li, idx)
		}
		if steps++; steps > len(r.slots) {
			return fmt.Errorf("%w: layer %d has a cycle", ErrCorrupt, li)
		}

		// Advance before the callback; Destroy keeps r.cursor valid.
		r.cursor = n.next
		if n.active && n.born != r.pass && n.obj != nil {
			h := NewHandle(idx, n.generation)
			if err := invoke(ev, n.obj, h); err != nil {
				r.fail(h, li, ev, err)
			}
		}
		idx = r.cursor
	}
	return nil
}

func invoke(ev Event, obj Object, h Handle) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, p)
		}
	}()
	switch ev {
	case EventUpdate:
		if u, ok := obj.(Updatable); ok {
			return u.Update(h)
		}
	case EventDraw:
		if d, ok := obj.(Drawable); ok {
			return d.Draw(h)
		}
	}
	return nil
}

func (r *Registry) fail(h Handle, li int, ev Event, err error) {
	// The callback may have destroyed its own object; only suspend if still live.
	r.SetActive(h, false)
	r.log.Error("entity callback failed, entity suspended",
		zap.Uint64("entity", uint64(h)),
		zap.Int("layer", li),
		zap.Stringer("event", ev),
		zap.Error(err),
	)
	if r.onFailure != nil {
		r.onFailure(Failure{Handle: h, Layer: li, Event: ev, Err: err})
	}
}
