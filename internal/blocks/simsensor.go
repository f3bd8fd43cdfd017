package blocks

import (
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

// SimSensor models a slow conversion sensor. Prepare starts a
// conversion and returns the configured delay; each Update after that
// moves the reading one step toward the target. The target is the
// writable half; the reading changes on its own.
//
// Definition payload: [target u16 LE][conversion delay ms u8].
type SimSensor struct {
	object.PersistedAddress
	acc     eeprom.Access
	target  uint16
	reading uint16
	delay   object.PrepareTime
}

func NewSimSensor(target uint16, delay object.PrepareTime) *SimSensor {
	return &SimSensor{target: target, delay: delay}
}

func (s *SimSensor) ObjectFlags() object.Flags {
	return object.FlagValue | object.FlagWritable | object.FlagHasState
}

func (s *SimSensor) TypeID() object.TypeID { return TypeSimSensor }

func (s *SimSensor) Prepare() object.PrepareTime { return s.delay }

func (s *SimSensor) Update() {
	switch {
	case s.reading < s.target:
		s.reading++
	case s.reading > s.target:
		s.reading--
	}
}

// ReadTo streams [reading u16][target u16]; the write side takes the
// target alone, so the two stream sizes differ.
func (s *SimSensor) ReadTo(out stream.DataOut) object.Status {
	ok := out.Put(byte(s.reading)) && out.Put(byte(s.reading>>8)) &&
		out.Put(byte(s.target)) && out.Put(byte(s.target>>8))
	if !ok {
		return object.StatusStreamError
	}
	return object.StatusOK
}

func (s *SimSensor) ReadStreamSize() uint8 { return 4 }

func (s *SimSensor) WriteFrom(in stream.DataIn) object.Status {
	var p [2]byte
	if !stream.ReadBytes(in, p[:]) {
		return object.StatusStreamError
	}
	s.target = uint16(p[0]) | uint16(p[1])<<8
	if s.acc != nil && s.Offset() != eeprom.InvalidPointer {
		s.acc.WriteBlock(s.Offset(), p[:])
	}
	return object.StatusOK
}

func (s *SimSensor) WriteStreamSize() uint8 { return 2 }

// Reading returns the current converted value.
func (s *SimSensor) Reading() uint16 { return s.reading }

// Target returns the value the reading converges toward.
func (s *SimSensor) Target() uint16 { return s.target }

func makeSimSensor(acc eeprom.Access) object.Factory {
	return func(def *object.Definition) (object.Object, object.Status) {
		if def.Len != 3 {
			return nil, object.StatusInvalidDefinition
		}
		var p [3]byte
		if !stream.ReadBytes(def.In, p[:]) {
			return nil, object.StatusInvalidDefinition
		}
		s := NewSimSensor(uint16(p[0])|uint16(p[1])<<8, object.PrepareTime(p[2]))
		s.acc = acc
		return s, object.StatusOK
	}
}
