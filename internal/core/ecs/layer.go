package ecs

// layer is one priority bucket: a doubly linked chain of arena slots kept in
// insertion order. first == nilIndex iff last == nilIndex iff the layer is empty.
type layer struct {
	first uint32
	last  uint32
	size  int
}

func emptyLayer() layer {
	return layer{first: nilIndex, last: nilIndex}
}

func (l *layer) empty() bool { return l.first == nilIndex }

// pushBack appends slot idx at the tail in O(1).
func (l *layer) pushBack(slots []node, idx uint32) {
	n := &slots[idx]
	n.next = nilIndex
	if l.last == nilIndex {
		n.prev = nilIndex
		l.first = idx
		l.last = idx
	} else {
		n.prev = l.last
		slots[l.last].next = idx
		l.last = idx
	}
	l.size++
}

// unlink splices slot idx out of the chain in O(1). The caller resets the
// slot's own links.
func (l *layer) unlink(slots []node, idx uint32) {
	n := &slots[idx]
	switch {
	case l.first == idx && l.last == idx:
		l.first = nilIndex
		l.last = nilIndex
	case l.first == idx:
		l.first = n.next
		slots[n.next].prev = nilIndex
	case l.last == idx:
		l.last = n.prev
		slots[n.prev].next = nilIndex
	default:
		slots[n.prev].next = n.next
		slots[n.next].prev = n.prev
	}
	l.size--
}
