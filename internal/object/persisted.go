package object

import "github.com/danmuck/slotbox/internal/eeprom"

// PersistedAddress remembers where an object's definition payload
// lives in storage. Embed it in any object type whose state is
// persisted; it supplies the Rehydrated half of the Object contract.
type PersistedAddress struct {
	addr eeprom.Pointer
	set  bool
}

// Rehydrated fixes the payload address. Only the first call has any
// effect; the address is immutable for the object's lifetime.
func (p *PersistedAddress) Rehydrated(addr eeprom.Pointer) {
	if p.set {
		return
	}
	p.addr = addr
	p.set = true
}

// Offset returns the payload address, or InvalidPointer when the
// object was never rehydrated.
func (p *PersistedAddress) Offset() eeprom.Pointer {
	if !p.set {
		return eeprom.InvalidPointer
	}
	return p.addr
}

// DefinitionLen reads the payload length prefix stored immediately
// before the payload address.
func (p *PersistedAddress) DefinitionLen(acc eeprom.Access) uint8 {
	if !p.set {
		return 0
	}
	return acc.ReadByte(p.addr - 1)
}
