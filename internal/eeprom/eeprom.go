// Package eeprom models the byte-addressable non-volatile storage the
// runtime keeps object definitions in. Implementations are tiny images
// measured in kilobytes; addressing is absolute offsets.
package eeprom

// Pointer is an absolute offset into an EEPROM image.
type Pointer uint16

// InvalidPointer marks an unset persisted address.
const InvalidPointer Pointer = 0xFFFF

// Erased is the value of a cell that has never been written.
const Erased byte = 0xFF

// Access is random-access byte storage. Reads outside the image return
// Erased; writes outside the image are dropped.
type Access interface {
	ReadByte(p Pointer) byte
	WriteByte(p Pointer, b byte)
	ReadBlock(p Pointer, dst []byte)
	WriteBlock(p Pointer, src []byte)
	Len() Pointer
}
