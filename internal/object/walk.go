package object

// Visit observes one object during a walk. It runs once with enter
// true before a container's children are visited and once with enter
// false after; non-containers get the same pair back to back. chain
// aliases the walker's buffer and is valid only for the duration of
// the call; Clone it to retain. Returning true stops the entire walk,
// including pending exit callbacks.
type Visit func(o Object, chain Chain, enter bool) bool

// WalkRoot enumerates root's children depth-first in slot order. Empty
// slots are skipped. The root itself is not visited; use WalkObject
// when the starting object should be included. Reports whether the
// walk was stopped.
func WalkRoot(root Container, fn Visit) bool {
	buf := make(Chain, 0, MaxDepth)
	return walkChildren(root, buf, fn)
}

// WalkObject visits o (enter, subtree, exit) with chain as its
// position. Reports whether the walk was stopped.
func WalkObject(o Object, chain Chain, fn Visit) bool {
	if fn(o, chain, true) {
		return true
	}
	if c, ok := o.(Container); ok && IsContainer(o) {
		if walkChildren(c, chain, fn) {
			return true
		}
	}
	return fn(o, chain, false)
}

func walkChildren(c Container, chain Chain, fn Visit) bool {
	if len(chain) == MaxDepth {
		// Deeper objects would not be addressable.
		return false
	}
	for id := ID(0); id < c.Size(); id++ {
		o := c.Item(id)
		if o == nil {
			continue
		}
		stopped := WalkObject(o, append(chain, id), fn)
		c.ReturnItem(id, o)
		if stopped {
			return true
		}
	}
	return false
}
