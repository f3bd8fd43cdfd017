package object

import (
	"testing"

	"github.com/danmuck/slotbox/internal/eeprom"
)

func TestPersistedAddressLengthPrefix(t *testing.T) {
	dev := eeprom.NewMemDevice(256)
	dev.WriteByte(100, 5)

	var p PersistedAddress
	p.Rehydrated(101)

	if got := p.DefinitionLen(dev); got != 5 {
		t.Fatalf("definition length = %d, want 5", got)
	}
	if p.Offset() != 101 {
		t.Fatalf("offset = %d, want 101", p.Offset())
	}
}

func TestPersistedAddressImmutableAfterFirstCall(t *testing.T) {
	var p PersistedAddress
	p.Rehydrated(40)
	p.Rehydrated(90)
	if p.Offset() != 40 {
		t.Fatalf("offset moved to %d; first call must win", p.Offset())
	}
}

func TestPersistedAddressUnset(t *testing.T) {
	var p PersistedAddress
	if p.Offset() != eeprom.InvalidPointer {
		t.Fatalf("unset offset = %d, want InvalidPointer", p.Offset())
	}
	if got := p.DefinitionLen(eeprom.NewMemDevice(16)); got != 0 {
		t.Fatalf("unset definition length = %d, want 0", got)
	}
}
