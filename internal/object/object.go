package object

import "github.com/danmuck/slotbox/internal/eeprom"

// TypeID identifies a creatable object type. 0 is reserved.
type TypeID uint8

// PrepareTime is a delay in milliseconds an object requests before its
// next Update.
type PrepareTime uint16

// Object is the base runtime unit. Everything addressable in the tree
// implements it.
type Object interface {
	// ObjectFlags reports the object's capabilities.
	ObjectFlags() Flags
	// TypeID reports the creatable type this object was built from, or
	// 0 for fixed system objects.
	TypeID() TypeID
	// Rehydrated tells the object where its persisted definition
	// payload lives. Invoked at most once, when the object is built
	// from or first written to storage; the address never changes
	// afterwards.
	Rehydrated(addr eeprom.Pointer)
	// Prepare asks the object to start whatever work its next Update
	// needs and returns the delay before Update may run.
	Prepare() PrepareTime
	// Update performs one state step. It must not run before the delay
	// returned by Prepare has elapsed.
	Update()
}

// BasicObject supplies the no-op lifecycle defaults. Embed it and
// override what the type actually needs.
type BasicObject struct{}

func (BasicObject) ObjectFlags() Flags        { return FlagObject }
func (BasicObject) TypeID() TypeID            { return 0 }
func (BasicObject) Rehydrated(eeprom.Pointer) {}
func (BasicObject) Prepare() PrepareTime      { return 0 }
func (BasicObject) Update()                   {}
