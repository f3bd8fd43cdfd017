package object

import (
	"testing"

	"github.com/danmuck/slotbox/internal/stream"
)

// fakeObject reports whatever flags a test assigns it.
type fakeObject struct {
	BasicObject
	flags Flags
}

func (o *fakeObject) ObjectFlags() Flags { return o.flags }

// fakeValue is a writable two-byte little-endian value.
type fakeValue struct {
	BasicObject
	v uint16
}

func (v *fakeValue) ObjectFlags() Flags { return FlagValue | FlagWritable }

func (v *fakeValue) ReadTo(out stream.DataOut) Status {
	if !out.Put(byte(v.v)) || !out.Put(byte(v.v>>8)) {
		return StatusStreamError
	}
	return StatusOK
}

func (v *fakeValue) ReadStreamSize() uint8 { return 2 }

func (v *fakeValue) WriteFrom(in stream.DataIn) Status {
	var p [2]byte
	if !stream.ReadBytes(in, p[:]) {
		return StatusStreamError
	}
	v.v = uint16(p[0]) | uint16(p[1])<<8
	return StatusOK
}

func (v *fakeValue) WriteStreamSize() uint8 { return 2 }

func wireChain(t *testing.T, c Chain) []byte {
	t.Helper()
	out := stream.NewBufferOut(MaxDepth)
	if !EncodeChain(c, out) {
		t.Fatalf("encode chain %v", c)
	}
	return out.Bytes()
}

func chainIn(t *testing.T, c Chain) stream.DataIn {
	t.Helper()
	return stream.NewBufferIn(wireChain(t, c))
}
