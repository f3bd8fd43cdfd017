package object

// Container holds addressable children. Item lends the object in a
// slot; every non-nil result must be handed back through ReturnItem
// before the slot is queried or mutated again. The default
// implementations keep objects resident, so ReturnItem is cheap; a
// factory container destroys returned items instead.
type Container interface {
	Object
	// Item returns the object at id, or nil when the slot is empty or
	// out of range.
	Item(id ID) Object
	// ReturnItem gives back an object obtained from Item.
	ReturnItem(id ID, o Object)
	// Size returns the exclusive upper bound of addressable slots.
	Size() ID
}

// OpenContainer is a container whose membership can change at runtime.
type OpenContainer interface {
	Container
	// Add places o at id, growing the container when it can. It
	// reports false when the slot cannot be provided.
	Add(id ID, o Object) bool
	// Next returns the lowest free slot, or InvalidID when full.
	Next() ID
	// Remove empties the slot. Removing an empty or out-of-range slot
	// is a no-op.
	Remove(id ID)
}

// FixedContainer holds a slot array fixed at construction. The system
// tree uses it: membership never changes, objects are static.
type FixedContainer struct {
	BasicObject
	slots   []Object
	borrows int
}

func NewFixedContainer(slots ...Object) *FixedContainer {
	return &FixedContainer{slots: slots}
}

func (c *FixedContainer) ObjectFlags() Flags {
	return FlagContainer | FlagStatic
}

func (c *FixedContainer) Item(id ID) Object {
	if id < 0 || int(id) >= len(c.slots) {
		return nil
	}
	o := c.slots[id]
	if o != nil {
		c.borrows++
	}
	return o
}

func (c *FixedContainer) ReturnItem(id ID, o Object) {
	if o != nil {
		c.borrows--
	}
}

func (c *FixedContainer) Size() ID {
	return ID(len(c.slots))
}

// Borrows returns the number of outstanding lends; a nonzero count
// after an operation completes means a caller skipped ReturnItem.
func (c *FixedContainer) Borrows() int {
	return c.borrows
}

// DynamicContainer is a growable open container; the user tree's root
// and group objects use it. Slots grow on Add up to MaxID.
type DynamicContainer struct {
	BasicObject
	slots   []Object
	borrows int
}

func NewDynamicContainer() *DynamicContainer {
	return &DynamicContainer{}
}

func (c *DynamicContainer) ObjectFlags() Flags {
	return FlagContainer | FlagOpenContainer
}

func (c *DynamicContainer) Item(id ID) Object {
	if id < 0 || int(id) >= len(c.slots) {
		return nil
	}
	o := c.slots[id]
	if o != nil {
		c.borrows++
	}
	return o
}

func (c *DynamicContainer) ReturnItem(id ID, o Object) {
	if o != nil {
		c.borrows--
	}
}

func (c *DynamicContainer) Size() ID {
	return ID(len(c.slots))
}

func (c *DynamicContainer) Add(id ID, o Object) bool {
	if id < 0 || o == nil {
		return false
	}
	for int(id) >= len(c.slots) {
		c.slots = append(c.slots, nil)
	}
	c.slots[id] = o
	return true
}

func (c *DynamicContainer) Next() ID {
	for i, o := range c.slots {
		if o == nil {
			return ID(i)
		}
	}
	if len(c.slots) <= int(MaxID) {
		return ID(len(c.slots))
	}
	return InvalidID
}

func (c *DynamicContainer) Remove(id ID) {
	if id < 0 || int(id) >= len(c.slots) {
		return
	}
	c.slots[id] = nil
}

func (c *DynamicContainer) Borrows() int {
	return c.borrows
}

// FactoryContainer constructs an item on every borrow and destroys it
// on return, so borrowed instances carry no identity across borrow
// cycles.
type FactoryContainer struct {
	BasicObject
	size  ID
	build func(id ID) Object
}

func NewFactoryContainer(size ID, build func(id ID) Object) *FactoryContainer {
	return &FactoryContainer{size: size, build: build}
}

func (c *FactoryContainer) ObjectFlags() Flags {
	return FlagContainer
}

func (c *FactoryContainer) Item(id ID) Object {
	if id < 0 || id >= c.size {
		return nil
	}
	return c.build(id)
}

// ReturnItem drops the instance; the next Item builds a fresh one.
func (c *FactoryContainer) ReturnItem(id ID, o Object) {}

func (c *FactoryContainer) Size() ID {
	return c.size
}
