package persist

import (
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

// A definition record is stored exactly as a replayable creation
// command:
//
//	[cmd:1][id chain][type:1][len:1][payload: len bytes]
//
// The object's persisted address is the first payload byte, which puts
// the length prefix at address-1. Disposing a record overwrites cmd in
// place; the rest of the record stays so scans can step over it.
const (
	CmdDisposed     byte = 0x00
	CmdCreateObject byte = 0x03
)

// maxRecordLen bounds one record: cmd, full-depth chain, type, len,
// largest payload.
const maxRecordLen = 1 + object.MaxDepth + 1 + 1 + 255

// Record is one definition record read back from storage.
type Record struct {
	// Start is the absolute offset of the record's cmd byte.
	Start eeprom.Pointer
	// Addr is the absolute offset of the first payload byte.
	Addr     eeprom.Pointer
	Chain    object.Chain
	Type     object.TypeID
	Payload  []byte
	Disposed bool
}

// encodeRecord renders the stored form of a creation record.
func encodeRecord(chain object.Chain, typ object.TypeID, payload []byte) ([]byte, bool) {
	if typ == 0 || len(payload) > 255 {
		return nil, false
	}
	out := stream.NewBufferOut(maxRecordLen)
	out.Put(CmdCreateObject)
	if !object.EncodeChain(chain, out) {
		return nil, false
	}
	out.Put(byte(typ))
	out.Put(byte(len(payload)))
	out.Write(payload)
	if out.Overflowed() {
		return nil, false
	}
	return out.Bytes(), true
}

// payloadOffset returns where a record's payload starts relative to
// its first byte.
func payloadOffset(chain object.Chain) eeprom.Pointer {
	return eeprom.Pointer(1 + len(chain) + 1 + 1)
}

// scanRegion parses records in [start, end), invoking fn for every
// record including disposed ones. fn returning false stops the scan.
// A record that cannot be parsed stops the scan with a stream error.
func scanRegion(acc eeprom.Access, start, end eeprom.Pointer, fn func(rec Record) bool) object.Status {
	in := NewEepromDataIn(acc, start, end)
	for in.HasNext() {
		rec := Record{Start: in.Pos()}
		cmd := in.Next()
		switch cmd {
		case CmdCreateObject:
		case CmdDisposed:
			rec.Disposed = true
		default:
			return object.StatusStreamError
		}

		chain, ok := object.DecodeChain(in)
		if !ok {
			return object.StatusStreamError
		}
		rec.Chain = chain
		if !in.HasNext() {
			return object.StatusStreamError
		}
		rec.Type = object.TypeID(in.Next())
		if !in.HasNext() {
			return object.StatusStreamError
		}
		n := in.Next()
		rec.Addr = in.Pos()
		if eeprom.Pointer(n) > end-rec.Addr {
			return object.StatusStreamError
		}
		rec.Payload = make([]byte, n)
		acc.ReadBlock(rec.Addr, rec.Payload)
		in.pos += eeprom.Pointer(n)

		if !fn(rec) {
			return object.StatusOK
		}
	}
	return object.StatusOK
}
