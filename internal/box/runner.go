package box

import "github.com/danmuck/slotbox/internal/object"

// UpdateCycle runs one cooperative pass over the resident objects:
// Prepare everything, honor the longest delay any object asked for,
// then Update everything. The wait happens off the lock so commands
// stay responsive while sensors settle. Returns the honored delay so
// the caller can pace idle cycles.
func (b *Box) UpdateCycle() object.PrepareTime {
	b.mu.Lock()
	var wait object.PrepareTime
	prepare := func(o object.Object, _ object.Chain, enter bool) bool {
		if enter {
			if pt := o.Prepare(); pt > wait {
				wait = pt
			}
		}
		return false
	}
	object.WalkRoot(b.system, prepare)
	object.WalkRoot(b.root, prepare)
	b.mu.Unlock()

	if wait > 0 {
		b.ticks.Sleep(uint32(wait))
	}

	b.mu.Lock()
	update := func(o object.Object, _ object.Chain, enter bool) bool {
		if enter {
			o.Update()
		}
		return false
	}
	object.WalkRoot(b.system, update)
	object.WalkRoot(b.root, update)
	b.mu.Unlock()
	return wait
}
