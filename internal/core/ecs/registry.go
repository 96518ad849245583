package ecs

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	// DefaultLayers is the number of priority buckets when none is configured.
	DefaultLayers = 16
	// MaxLayers bounds the layer count; the layer index is stored in a byte.
	MaxLayers = 256
)

// RegistryConfig fixes the shape of a Registry at construction.
type RegistryConfig struct {
	Layers     int // number of layers (0 = DefaultLayers)
	MaxObjects int // live object cap (0 = arena limit)
}

// Registry owns every layer and the slot arena backing the handle table.
// Single-goroutine access only (the frame loop); callbacks running under
// Dispatch may call Create and Destroy re-entrantly.
type Registry struct {
	slots    []node
	freeList []uint32
	layers   []layer
	live     int
	max      int

	// dispatch state
	pass        uint64
	dispatching bool
	cursor      uint32

	onFailure func(Failure)
	log       *zap.Logger
}

func NewRegistry(cfg RegistryConfig, log *zap.Logger) *Registry {
	n := cfg.Layers
	if n <= 0 {
		n = DefaultLayers
	}
	if n > MaxLayers {
		n = MaxLayers
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		slots:    make([]node, 0, 256),
		freeList: make([]uint32, 0, 64),
		layers:   make([]layer, n),
		max:      cfg.MaxObjects,
		cursor:   nilIndex,
		log:      log,
	}
	for i := range r.layers {
		r.layers[i] = emptyLayer()
	}
	return r
}

// SetFailureHook installs fn to be called after a callback failure has been
// logged and the object suspended. Pass nil to remove it.
func (r *Registry) SetFailureHook(fn func(Failure)) {
	r.onFailure = fn
}

// Layers returns the fixed layer count.
func (r *Registry) Layers() int { return len(r.layers) }

// Len returns the number of live objects.
func (r *Registry) Len() int { return r.live }

// LayerLen returns the number of live objects in layer, or 0 if out of range.
func (r *Registry) LayerLen(layer int) int {
	if layer < 0 || layer >= len(r.layers) {
		return 0
	}
	return r.layers[layer].size
}

// ClampLayer maps any integer into the valid layer range.
func (r *Registry) ClampLayer(layer int) int {
	switch {
	case layer < 0:
		return 0
	case layer >= len(r.layers):
		return len(r.layers) - 1
	}
	return layer
}

// Create allocates a slot for obj and appends it to the tail of layer.
// Out-of-range layers are clamped with a warning. The new object is active and
// will be visited starting with the next Dispatch call.
func (r *Registry) Create(layer int, obj Object) (Handle, error) {
	clamped := r.ClampLayer(layer)
	if clamped != layer {
		r.log.Warn("entity layer out of range, clamped",
			zap.Int("requested", layer),
			zap.Int("layer", clamped),
		)
	}

	if r.max > 0 && r.live >= r.max {
		r.log.Error("failed to allocate entity node",
			zap.Int("live", r.live),
			zap.Int("max_objects", r.max),
		)
		return 0, ErrOutOfMemory
	}

	idx, ok := r.allocSlot()
	if !ok {
		r.log.Error("failed to allocate entity node: arena exhausted", zap.Int("live", r.live))
		return 0, ErrOutOfMemory
	}

	n := &r.slots[idx]
	n.obj = obj
	n.layer = uint8(clamped)
	n.live = true
	n.active = true
	n.born = r.pass
	r.layers[clamped].pushBack(r.slots, idx)
	r.live++

	return NewHandle(idx, n.generation), nil
}

func (r *Registry) allocSlot() (uint32, bool) {
	if k := len(r.freeList); k > 0 {
		idx := r.freeList[k-1]
		r.freeList = r.freeList[:k-1]
		return idx, true
	}
	if uint64(len(r.slots)) >= uint64(nilIndex) {
		return 0, false
	}
	r.slots = append(r.slots, node{generation: 1, prev: nilIndex, next: nilIndex})
	return uint32(len(r.slots) - 1), true
}

// lookup resolves h to its slot index if h names a live object.
func (r *Registry) lookup(h Handle) (uint32, bool) {
	idx := h.Index()
	if h.IsZero() || int(idx) >= len(r.slots) {
		return 0, false
	}
	n := &r.slots[idx]
	if !n.live || n.generation != h.Generation() {
		return 0, false
	}
	return idx, true
}

// Destroy unlinks the object named by h in O(1) and invalidates h.
// Zero, stale and already-destroyed handles are ignored.
func (r *Registry) Destroy(h Handle) {
	idx, ok := r.lookup(h)
	if !ok {
		return
	}
	n := &r.slots[idx]

	// Keep an in-flight traversal off the slot being released.
	if r.dispatching && r.cursor == idx {
		r.cursor = n.next
	}

	r.layers[n.layer].unlink(r.slots, idx)
	n.obj = nil
	n.live = false
	n.active = false
	n.prev = nilIndex
	n.next = nilIndex
	n.generation++
	if n.generation == 0 {
		n.generation = 1
	}
	r.freeList = append(r.freeList, idx)
	r.live--
}

// DestroyAll removes every live object, layer by layer.
func (r *Registry) DestroyAll() {
	for li := range r.layers {
		for idx := r.layers[li].first; idx != nilIndex; {
			next := r.slots[idx].next
			r.Destroy(NewHandle(idx, r.slots[idx].generation))
			idx = next
		}
	}
}

// Alive reports whether h names a live object.
func (r *Registry) Alive(h Handle) bool {
	_, ok := r.lookup(h)
	return ok
}

// Object returns the value bound to h.
func (r *Registry) Object(h Handle) (Object, bool) {
	idx, ok := r.lookup(h)
	if !ok {
		return nil, false
	}
	return r.slots[idx].obj, true
}

// Layer returns the layer h was created in.
func (r *Registry) Layer(h Handle) (int, bool) {
	idx, ok := r.lookup(h)
	if !ok {
		return 0, false
	}
	return int(r.slots[idx].layer), true
}

// Active reports the activity flag of h. Dead handles are never active.
func (r *Registry) Active(h Handle) bool {
	idx, ok := r.lookup(h)
	return ok && r.slots[idx].active
}

// SetActive sets the activity flag of h and reports whether h was live.
func (r *Registry) SetActive(h Handle, active bool) bool {
	idx, ok := r.lookup(h)
	if !ok {
		return false
	}
	r.slots[idx].active = active
	return true
}

// Each walks live objects in dispatch order until fn returns false.
// fn must not create or destroy objects.
func (r *Registry) Each(fn func(Handle, Object) bool) {
	for li := range r.layers {
		for idx := r.layers[li].first; idx != nilIndex; idx = r.slots[idx].next {
			n := &r.slots[idx]
			if !fn(NewHandle(idx, n.generation), n.obj) {
				return
			}
		}
	}
}

// Verify checks every layer chain and the live count.
func (r *Registry) Verify() error {
	seen := 0
	for li := range r.layers {
		l := &r.layers[li]
		if (l.first == nilIndex) != (l.last == nilIndex) {
			return fmt.Errorf("%w: layer %d has first=%d last=%d", ErrCorrupt, li, l.first, l.last)
		}
		prev := nilIndex
		count := 0
		for idx := l.first; idx != nilIndex; idx = r.slots[idx].next {
			if int(idx) >= len(r.slots) {
				return fmt.Errorf("%w: layer %d links to slot %d out of range", ErrCorrupt, li, idx)
			}
			n := &r.slots[idx]
			switch {
			case !n.live:
				return fmt.Errorf("%w: layer %d links to dead slot %d", ErrCorrupt, li, idx)
			case int(n.layer) != li:
				return fmt.Errorf("%w: slot %d in layer %d claims layer %d", ErrCorrupt, idx, li, n.layer)
			case n.prev != prev:
				return fmt.Errorf("%w: slot %d back-link %d, want %d", ErrCorrupt, idx, n.prev, prev)
			}
			count++
			if count > len(r.slots) {
				return fmt.Errorf("%w: layer %d has a cycle", ErrCorrupt, li)
			}
			prev = idx
		}
		if prev != l.last {
			return fmt.Errorf("%w: layer %d ends at %d, last is %d", ErrCorrupt, li, prev, l.last)
		}
		if count != l.size {
			return fmt.Errorf("%w: layer %d holds %d nodes, size is %d", ErrCorrupt, li, count, l.size)
		}
		seen += count
	}
	if seen != r.live {
		return fmt.Errorf("%w: %d linked nodes, %d live", ErrCorrupt, seen, r.live)
	}
	return nil
}
