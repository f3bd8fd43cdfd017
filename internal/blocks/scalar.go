package blocks

import (
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

// Scalar is a writable little-endian unsigned integer of 1, 2, or 4
// bytes. Writes flow back into the object's persisted payload, so the
// last written value survives a restart.
type Scalar struct {
	object.PersistedAddress
	acc    eeprom.Access
	typeID object.TypeID
	size   uint8
	v      uint64
}

func NewScalar(typeID object.TypeID, size uint8, initial uint64) *Scalar {
	s := &Scalar{typeID: typeID, size: size}
	s.v = s.mask(initial)
	return s
}

func (s *Scalar) ObjectFlags() object.Flags {
	return object.FlagValue | object.FlagWritable
}

func (s *Scalar) TypeID() object.TypeID       { return s.typeID }
func (s *Scalar) Prepare() object.PrepareTime { return 0 }
func (s *Scalar) Update()                     {}

func (s *Scalar) ReadTo(out stream.DataOut) object.Status {
	for i := uint8(0); i < s.size; i++ {
		if !out.Put(byte(s.v >> (8 * i))) {
			return object.StatusStreamError
		}
	}
	return object.StatusOK
}

func (s *Scalar) ReadStreamSize() uint8 { return s.size }

func (s *Scalar) WriteFrom(in stream.DataIn) object.Status {
	p := make([]byte, s.size)
	if !stream.ReadBytes(in, p) {
		return object.StatusStreamError
	}
	var v uint64
	for i, b := range p {
		v |= uint64(b) << (8 * i)
	}
	s.v = v
	s.persist(p)
	return object.StatusOK
}

func (s *Scalar) WriteStreamSize() uint8 { return s.size }

// Get returns the current value.
func (s *Scalar) Get() uint64 { return s.v }

// persist writes the new payload bytes over the stored definition.
func (s *Scalar) persist(p []byte) {
	if s.acc == nil || s.Offset() == eeprom.InvalidPointer {
		return
	}
	s.acc.WriteBlock(s.Offset(), p)
}

func (s *Scalar) mask(v uint64) uint64 {
	if s.size >= 8 {
		return v
	}
	return v & (1<<(8*uint(s.size)) - 1)
}

// makeScalar builds the factory for one scalar width. The definition
// payload is the initial value in little-endian form.
func makeScalar(typeID object.TypeID, size uint8, acc eeprom.Access) object.Factory {
	return func(def *object.Definition) (object.Object, object.Status) {
		if def.Len != size {
			return nil, object.StatusInvalidDefinition
		}
		p := make([]byte, size)
		if !stream.ReadBytes(def.In, p) {
			return nil, object.StatusInvalidDefinition
		}
		var v uint64
		for i, b := range p {
			v |= uint64(b) << (8 * i)
		}
		s := NewScalar(typeID, size, v)
		s.acc = acc
		return s, object.StatusOK
	}
}
