package ecs

// Handle encodes a 32-bit arena index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Generations start at 1, so the zero Handle never names a live object.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// Object is the host-side value bound to a Handle. It may implement Updatable,
// Drawable, both, or neither.
type Object any

// Updatable receives EventUpdate.
type Updatable interface {
	Update(h Handle) error
}

// Drawable receives EventDraw.
type Drawable interface {
	Draw(h Handle) error
}

// nilIndex terminates a layer chain.
const nilIndex = ^uint32(0)

// node is one arena slot. A slot is reused after destroy with a bumped
// generation; prev/next are arena indices and only meaningful while live.
type node struct {
	obj        Object
	generation uint32
	prev       uint32
	next       uint32
	born       uint64 // dispatch pass the node was created in
	layer      uint8
	live       bool
	active     bool
}
