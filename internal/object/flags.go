// Package object defines the runtime object model: capability flags,
// the object/value/container lattice, id-chain addressing, resolution
// and traversal, and the registry of creatable types.
package object

import "strings"

// Flags is the capability bitset every object reports. A derived
// capability ORs its base's flags with its own new bits, so predicates
// can require all bits of a capability at once.
type Flags uint8

const (
	// FlagObject is the base capability: addressable, no behavior.
	FlagObject Flags = 0
	// FlagWritable marks a value writable from a stream. On a
	// container the same bit marks it open for Add and Remove.
	FlagWritable      Flags = 1 << 0
	FlagOpenContainer Flags = 1 << 0
	// FlagHasState marks state that changes without stream writes.
	FlagHasState Flags = 1 << 1
	// FlagValue marks state readable to a stream.
	FlagValue Flags = 1 << 2
	// FlagContainer marks an object holding addressable children.
	FlagContainer Flags = 1 << 3
	// FlagNotLogged excludes a value from periodic value logging.
	FlagNotLogged Flags = 1 << 4
	// FlagStatic marks an object that is not dynamically allocated and
	// therefore never disposed.
	FlagStatic Flags = 1 << 5
)

// HasFlags reports whether every bit of want is set in f.
func HasFlags(f, want Flags) bool {
	return f&want == want
}

// IsContainer reports whether o holds addressable children.
func IsContainer(o Object) bool {
	return o != nil && HasFlags(o.ObjectFlags(), FlagContainer)
}

// IsOpenContainer reports whether o accepts Add and Remove.
func IsOpenContainer(o Object) bool {
	return o != nil && HasFlags(o.ObjectFlags(), FlagContainer|FlagOpenContainer)
}

// IsValue reports whether o streams state out.
func IsValue(o Object) bool {
	return o != nil && HasFlags(o.ObjectFlags(), FlagValue)
}

// IsWritableValue reports whether o accepts state from a stream.
func IsWritableValue(o Object) bool {
	return o != nil && HasFlags(o.ObjectFlags(), FlagValue|FlagWritable)
}

// IsLoggedValue reports whether o is a value that participates in
// value logging: the value bit set and the not-logged bit clear.
func IsLoggedValue(o Object) bool {
	return o != nil && o.ObjectFlags()&(FlagValue|FlagNotLogged) == FlagValue
}

// IsDynamic reports whether o was dynamically allocated and may be
// disposed when removed from its container.
func IsDynamic(o Object) bool {
	return o != nil && o.ObjectFlags()&FlagStatic == 0
}

func (f Flags) String() string {
	if f == FlagObject {
		return "object"
	}
	parts := make([]string, 0, 5)
	if HasFlags(f, FlagContainer) {
		if HasFlags(f, FlagOpenContainer) {
			parts = append(parts, "open-container")
		} else {
			parts = append(parts, "container")
		}
	}
	if HasFlags(f, FlagValue) {
		if HasFlags(f, FlagWritable) {
			parts = append(parts, "writable-value")
		} else {
			parts = append(parts, "value")
		}
	}
	if !HasFlags(f, FlagContainer) && !HasFlags(f, FlagValue) && f&FlagWritable != 0 {
		parts = append(parts, "writable")
	}
	if f&FlagHasState != 0 {
		parts = append(parts, "has-state")
	}
	if f&FlagNotLogged != 0 {
		parts = append(parts, "not-logged")
	}
	if f&FlagStatic != 0 {
		parts = append(parts, "static")
	}
	return strings.Join(parts, "|")
}
