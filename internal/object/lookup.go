package object

import "github.com/danmuck/slotbox/internal/stream"

// Handle is a borrowed reference to a contained object. Release gives
// the object back to the container it was borrowed from; it is
// idempotent. Objects borrowed from a factory container must not be
// used after Release.
type Handle struct {
	obj      Object
	owner    Container
	id       ID
	released bool
}

// Object returns the borrowed object, or nil once released.
func (h *Handle) Object() Object {
	if h == nil || h.released {
		return nil
	}
	return h.obj
}

// ID returns the slot the object was borrowed from.
func (h *Handle) ID() ID {
	if h == nil {
		return InvalidID
	}
	return h.id
}

func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	if h.owner != nil {
		h.owner.ReturnItem(h.id, h.obj)
	}
}

// ContainerHandle is a borrowed container plus the final chain id the
// caller addressed within it, for create and delete operations.
type ContainerHandle struct {
	c        Container
	owner    Container
	id       ID
	slot     ID
	released bool
}

// Container returns the borrowed container, or nil once released.
func (h *ContainerHandle) Container() Container {
	if h == nil || h.released {
		return nil
	}
	return h.c
}

// Slot returns the final id of the resolved chain.
func (h *ContainerHandle) Slot() ID {
	if h == nil {
		return InvalidID
	}
	return h.slot
}

func (h *ContainerHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	if h.owner != nil {
		h.owner.ReturnItem(h.id, h.c)
	}
}

// FetchContained returns the child of o at id when o is a container,
// nil otherwise. The result is a borrow against o.
func FetchContained(o Object, id ID) Object {
	if !IsContainer(o) {
		return nil
	}
	c, ok := o.(Container)
	if !ok {
		return nil
	}
	return c.Item(id)
}

// LookupObject resolves a wire-encoded id chain against root. Failures
// resolve to nil: an empty or out-of-range slot, a non-container in
// the middle of the chain, a truncated stream, or a continuation past
// MaxDepth. Intermediate containers are returned as traversal
// descends; the terminal object stays borrowed through the handle.
func LookupObject(root Container, in stream.DataIn) *Handle {
	cur := root
	var curOwner Container
	var curID ID
	for depth := 0; depth < MaxDepth; depth++ {
		if !in.HasNext() {
			break
		}
		b := in.Next()
		id := ID(b & 0x7F)
		last := b&0x80 == 0

		obj := cur.Item(id)
		if obj == nil {
			releaseInto(curOwner, curID, cur)
			return nil
		}
		if last {
			releaseInto(curOwner, curID, cur)
			return &Handle{obj: obj, owner: cur, id: id}
		}

		next, ok := obj.(Container)
		if !ok || !IsContainer(obj) {
			cur.ReturnItem(id, obj)
			releaseInto(curOwner, curID, cur)
			return nil
		}
		releaseInto(curOwner, curID, cur)
		curOwner, curID, cur = cur, id, next
	}
	releaseInto(curOwner, curID, cur)
	return nil
}

// LookupContainer resolves a chain to the container holding the final
// object plus the final id, without borrowing the final slot itself.
// The returned container stays borrowed through the handle.
func LookupContainer(root Container, in stream.DataIn) *ContainerHandle {
	cur := root
	var curOwner Container
	var curID ID
	for depth := 0; depth < MaxDepth; depth++ {
		if !in.HasNext() {
			break
		}
		b := in.Next()
		id := ID(b & 0x7F)
		last := b&0x80 == 0

		if last {
			return &ContainerHandle{c: cur, owner: curOwner, id: curID, slot: id}
		}

		obj := cur.Item(id)
		if obj == nil {
			releaseInto(curOwner, curID, cur)
			return nil
		}
		next, ok := obj.(Container)
		if !ok || !IsContainer(obj) {
			cur.ReturnItem(id, obj)
			releaseInto(curOwner, curID, cur)
			return nil
		}
		releaseInto(curOwner, curID, cur)
		curOwner, curID, cur = cur, id, next
	}
	releaseInto(curOwner, curID, cur)
	return nil
}

// releaseInto returns cur to the container it was borrowed from; the
// root is never borrowed, signalled by a nil owner.
func releaseInto(owner Container, id ID, cur Container) {
	if owner != nil {
		owner.ReturnItem(id, cur)
	}
}
