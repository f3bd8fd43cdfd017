// Package persist stores object definitions in an EEPROM image: a
// replayable creation record per object, grouped into fixed-capacity
// profiles, with the active profile replayed at boot.
package persist

import (
	"github.com/danmuck/slotbox/internal/eeprom"
)

// EepromDataIn streams the bytes of an image region [pos, end).
type EepromDataIn struct {
	acc eeprom.Access
	pos eeprom.Pointer
	end eeprom.Pointer
}

func NewEepromDataIn(acc eeprom.Access, start, end eeprom.Pointer) *EepromDataIn {
	return &EepromDataIn{acc: acc, pos: start, end: end}
}

func (in *EepromDataIn) HasNext() bool {
	return in.pos < in.end
}

func (in *EepromDataIn) Next() byte {
	if in.pos >= in.end {
		return 0
	}
	b := in.acc.ReadByte(in.pos)
	in.pos++
	return b
}

// Pos returns the absolute offset of the next byte to read.
func (in *EepromDataIn) Pos() eeprom.Pointer {
	return in.pos
}

// EepromDataOut streams writes into an image region [pos, end).
// Writes past the region are dropped and recorded as overflow.
type EepromDataOut struct {
	acc      eeprom.Access
	pos      eeprom.Pointer
	end      eeprom.Pointer
	overflow bool
}

func NewEepromDataOut(acc eeprom.Access, start, end eeprom.Pointer) *EepromDataOut {
	return &EepromDataOut{acc: acc, pos: start, end: end}
}

func (out *EepromDataOut) Put(b byte) bool {
	if out.pos >= out.end {
		out.overflow = true
		return false
	}
	out.acc.WriteByte(out.pos, b)
	out.pos++
	return true
}

func (out *EepromDataOut) Write(p []byte) bool {
	ok := true
	for _, b := range p {
		ok = out.Put(b) && ok
	}
	return ok
}

// Pos returns the absolute offset of the next byte to write.
func (out *EepromDataOut) Pos() eeprom.Pointer {
	return out.pos
}

func (out *EepromDataOut) Overflowed() bool {
	return out.overflow
}
