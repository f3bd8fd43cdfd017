package blocks

import (
	"bytes"
	"testing"

	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

func makeDef(t *testing.T, typ object.TypeID, payload []byte) *object.Definition {
	t.Helper()
	return &object.Definition{
		Type: typ,
		Len:  uint8(len(payload)),
		In:   stream.NewRegionIn(stream.NewBufferIn(payload), len(payload)),
	}
}

func TestScalarFactoryInitialValue(t *testing.T) {
	o, st := makeScalar(TypeScalarU16, 2, nil)(makeDef(t, TypeScalarU16, []byte{0x34, 0x12}))
	if !st.OK() {
		t.Fatalf("make: %v", st)
	}
	s := o.(*Scalar)
	if s.Get() != 0x1234 {
		t.Fatalf("initial = %#x, want 0x1234", s.Get())
	}
	if !object.IsWritableValue(s) || !object.IsLoggedValue(s) {
		t.Fatalf("scalar flags = %v", s.ObjectFlags())
	}
}

func TestScalarFactoryRejectsWrongLength(t *testing.T) {
	if _, st := makeScalar(TypeScalarU16, 2, nil)(makeDef(t, TypeScalarU16, []byte{1})); st != object.StatusInvalidDefinition {
		t.Fatalf("short payload: %v", st)
	}
}

func TestScalarReadWriteRoundTrip(t *testing.T) {
	s := NewScalar(TypeScalarU32, 4, 0)
	if st := object.WriteValue(s, []byte{0x78, 0x56, 0x34, 0x12}); !st.OK() {
		t.Fatalf("write: %v", st)
	}
	if s.Get() != 0x12345678 {
		t.Fatalf("value = %#x", s.Get())
	}
	p, st := object.ReadValue(s)
	if !st.OK() || !bytes.Equal(p, []byte{0x78, 0x56, 0x34, 0x12}) {
		t.Fatalf("read = %v st=%v", p, st)
	}
}

func TestScalarWritePersistsPayload(t *testing.T) {
	dev := eeprom.NewMemDevice(64)
	o, st := makeScalar(TypeScalarU8, 1, dev)(makeDef(t, TypeScalarU8, []byte{0x01}))
	if !st.OK() {
		t.Fatalf("make: %v", st)
	}
	s := o.(*Scalar)
	s.Rehydrated(20)

	if st := object.WriteValue(s, []byte{0x99}); !st.OK() {
		t.Fatalf("write: %v", st)
	}
	if b := dev.ReadByte(20); b != 0x99 {
		t.Fatalf("persisted payload = %#x, want 0x99", b)
	}
}

func TestScalarWithoutAddressSkipsPersist(t *testing.T) {
	dev := eeprom.NewMemDevice(8)
	o, _ := makeScalar(TypeScalarU8, 1, dev)(makeDef(t, TypeScalarU8, []byte{0x01}))
	s := o.(*Scalar)
	// Never rehydrated: the write must not touch the device.
	if st := object.WriteValue(s, []byte{0x42}); !st.OK() {
		t.Fatalf("write: %v", st)
	}
	for i := eeprom.Pointer(0); i < 8; i++ {
		if dev.ReadByte(i) != eeprom.Erased {
			t.Fatalf("device touched at %d", i)
		}
	}
}
