package object

import "github.com/danmuck/slotbox/internal/stream"

// Value is an object whose state can be serialized to a stream.
// ReadTo and ReadStreamSize must agree on every call: ReadTo writes
// exactly ReadStreamSize bytes.
type Value interface {
	Object
	ReadTo(out stream.DataOut) Status
	ReadStreamSize() uint8
}

// WritableValue additionally accepts state from a stream. WriteFrom
// consumes exactly WriteStreamSize bytes; for fixed-size values that is
// conventionally the read size.
type WritableValue interface {
	Value
	WriteFrom(in stream.DataIn) Status
	WriteStreamSize() uint8
}

// ReadValue captures v's streamed state into a fresh buffer sized by
// the value's own declaration.
func ReadValue(v Value) ([]byte, Status) {
	out := stream.NewBufferOut(int(v.ReadStreamSize()))
	if st := v.ReadTo(out); !st.OK() {
		return nil, st
	}
	if out.Overflowed() {
		return nil, StatusStreamError
	}
	return out.Bytes(), StatusOK
}

// WriteValue streams p into v. The payload must match the declared
// write size exactly.
func WriteValue(v WritableValue, p []byte) Status {
	if len(p) != int(v.WriteStreamSize()) {
		return StatusInvalidSize
	}
	return v.WriteFrom(stream.NewBufferIn(p))
}
