package eeprom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
)

const (
	fileMagic   uint32 = 0x534C4258 // "SLBX"
	fileVersion uint16 = 1
	headerLen          = 16
)

var (
	ErrBadMagic    = errors.New("eeprom: bad image magic")
	ErrBadVersion  = errors.New("eeprom: unsupported image version")
	ErrBadChecksum = errors.New("eeprom: image checksum mismatch")
	ErrBadSize     = errors.New("eeprom: image size mismatch")
)

// FileDevice is an EEPROM image persisted to a file. The on-disk form
// is a 16-byte header (magic, format version, payload size, xxhash64 of
// the payload) followed by the raw cells. Cells live in memory; Flush
// rewrites the file with a fresh checksum.
type FileDevice struct {
	path  string
	mem   *MemDevice
	dirty bool
}

// CreateFile writes a blank image of size bytes to path and opens it.
func CreateFile(path string, size Pointer) (*FileDevice, error) {
	d := &FileDevice{path: path, mem: NewMemDevice(size), dirty: true}
	if err := d.Flush(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenFile loads an existing image, validating header and checksum.
func OpenFile(path string) (*FileDevice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("eeprom: open image: %w", err)
	}
	if len(raw) < headerLen {
		return nil, ErrBadSize
	}
	if binary.BigEndian.Uint32(raw[0:4]) != fileMagic {
		return nil, ErrBadMagic
	}
	if binary.BigEndian.Uint16(raw[4:6]) != fileVersion {
		return nil, ErrBadVersion
	}
	size := binary.BigEndian.Uint16(raw[6:8])
	payload := raw[headerLen:]
	if int(size) != len(payload) {
		return nil, ErrBadSize
	}
	if binary.BigEndian.Uint64(raw[8:16]) != xxhash.Sum64(payload) {
		return nil, ErrBadChecksum
	}
	return &FileDevice{path: path, mem: FromBytes(payload)}, nil
}

func (d *FileDevice) ReadByte(p Pointer) byte { return d.mem.ReadByte(p) }

func (d *FileDevice) WriteByte(p Pointer, b byte) {
	d.mem.WriteByte(p, b)
	d.dirty = true
}

func (d *FileDevice) ReadBlock(p Pointer, dst []byte) { d.mem.ReadBlock(p, dst) }

func (d *FileDevice) WriteBlock(p Pointer, src []byte) {
	d.mem.WriteBlock(p, src)
	d.dirty = true
}

func (d *FileDevice) Len() Pointer { return d.mem.Len() }

// Dirty reports whether cells changed since the last Flush.
func (d *FileDevice) Dirty() bool { return d.dirty }

// Flush writes header and cells to the file.
func (d *FileDevice) Flush() error {
	payload := d.mem.Bytes()
	buf := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], fileMagic)
	binary.BigEndian.PutUint16(buf[4:6], fileVersion)
	binary.BigEndian.PutUint16(buf[6:8], uint16(len(payload)))
	binary.BigEndian.PutUint64(buf[8:16], xxhash.Sum64(payload))
	copy(buf[headerLen:], payload)
	if err := os.WriteFile(d.path, buf, 0o644); err != nil {
		return fmt.Errorf("eeprom: flush image: %w", err)
	}
	d.dirty = false
	return nil
}

// Close flushes pending writes.
func (d *FileDevice) Close() error {
	if !d.dirty {
		return nil
	}
	return d.Flush()
}
