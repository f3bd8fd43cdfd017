// Package blocks provides the concrete object types a box ships with:
// creatable user blocks (groups, scalars, a simulated sensor) and the
// fixed system values.
package blocks

import (
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
)

// Creatable type ids. The 0x70 range is reserved for fixed system
// objects that never pass through the registry.
const (
	TypeGroup     object.TypeID = 0x01
	TypeScalarU8  object.TypeID = 0x02
	TypeScalarU16 object.TypeID = 0x03
	TypeScalarU32 object.TypeID = 0x04
	TypeSimSensor object.TypeID = 0x05

	TypeSysInfo       object.TypeID = 0x71
	TypeCurrentTicks  object.TypeID = 0x72
	TypeActiveProfile object.TypeID = 0x73
)

// RegisterDefaults installs every creatable block type. Scalar and
// sensor writes persist through acc; a nil acc keeps values
// memory-only.
func RegisterDefaults(r *object.Registry, acc eeprom.Access) error {
	types := []object.ObjectType{
		{ID: TypeGroup, Name: "group", Make: makeGroup},
		{ID: TypeScalarU8, Name: "scalar-u8", Make: makeScalar(TypeScalarU8, 1, acc)},
		{ID: TypeScalarU16, Name: "scalar-u16", Make: makeScalar(TypeScalarU16, 2, acc)},
		{ID: TypeScalarU32, Name: "scalar-u32", Make: makeScalar(TypeScalarU32, 4, acc)},
		{ID: TypeSimSensor, Name: "sim-sensor", Make: makeSimSensor(acc)},
	}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
