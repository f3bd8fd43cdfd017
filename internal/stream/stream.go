// Package stream defines the byte-stream abstractions the object model
// reads and writes. Transports and storage adapt to these interfaces;
// the core never sees sockets or devices directly.
package stream

// DataIn is a sequential byte source with no seeking.
type DataIn interface {
	// HasNext reports whether at least one more byte can be read.
	HasNext() bool
	// Next returns the next byte, or 0 when the source is exhausted.
	Next() byte
}

// DataOut is a sequential byte sink. Both methods report false once the
// sink stops accepting bytes; writes after that are dropped.
type DataOut interface {
	Put(b byte) bool
	Write(p []byte) bool
}

// BufferIn is a DataIn over an in-memory byte slice.
type BufferIn struct {
	buf []byte
	pos int
}

func NewBufferIn(p []byte) *BufferIn {
	return &BufferIn{buf: p}
}

func (in *BufferIn) HasNext() bool {
	return in.pos < len(in.buf)
}

func (in *BufferIn) Next() byte {
	if in.pos >= len(in.buf) {
		return 0
	}
	b := in.buf[in.pos]
	in.pos++
	return b
}

// Consumed returns how many bytes have been read.
func (in *BufferIn) Consumed() int {
	return in.pos
}

// BufferOut is a DataOut over a fixed-capacity buffer. Writes past the
// capacity are dropped and recorded as overflow.
type BufferOut struct {
	buf      []byte
	n        int
	overflow bool
}

func NewBufferOut(capacity int) *BufferOut {
	return &BufferOut{buf: make([]byte, capacity)}
}

func (o *BufferOut) Put(b byte) bool {
	if o.n >= len(o.buf) {
		o.overflow = true
		return false
	}
	o.buf[o.n] = b
	o.n++
	return true
}

func (o *BufferOut) Write(p []byte) bool {
	ok := true
	for _, b := range p {
		ok = o.Put(b) && ok
	}
	return ok
}

// Bytes returns the written prefix of the buffer.
func (o *BufferOut) Bytes() []byte {
	return o.buf[:o.n]
}

func (o *BufferOut) Len() int {
	return o.n
}

func (o *BufferOut) Overflowed() bool {
	return o.overflow
}

// Reset forgets all written bytes and clears the overflow flag.
func (o *BufferOut) Reset() {
	o.n = 0
	o.overflow = false
}

// CountingOut counts bytes without storing them. Used to check that
// values honor their declared stream sizes.
type CountingOut struct {
	n int
}

func (o *CountingOut) Put(b byte) bool {
	o.n++
	return true
}

func (o *CountingOut) Write(p []byte) bool {
	o.n += len(p)
	return true
}

func (o *CountingOut) Count() int {
	return o.n
}

// RegionIn exposes at most limit bytes of an underlying DataIn. It
// bounds object payload reads so a misbehaving reader cannot consume
// past its definition.
type RegionIn struct {
	in    DataIn
	limit int
}

func NewRegionIn(in DataIn, limit int) *RegionIn {
	return &RegionIn{in: in, limit: limit}
}

func (r *RegionIn) HasNext() bool {
	return r.limit > 0 && r.in.HasNext()
}

func (r *RegionIn) Next() byte {
	if r.limit <= 0 {
		return 0
	}
	r.limit--
	return r.in.Next()
}

// Remaining returns how many bytes may still be read from the region.
func (r *RegionIn) Remaining() int {
	if r.limit < 0 {
		return 0
	}
	return r.limit
}

// ReadBytes fills p from in. It reports false when the source ran dry
// before p was full.
func ReadBytes(in DataIn, p []byte) bool {
	for i := range p {
		if !in.HasNext() {
			return false
		}
		p[i] = in.Next()
	}
	return true
}

// Spool drains in and returns the number of bytes discarded.
func Spool(in DataIn) int {
	n := 0
	for in.HasNext() {
		in.Next()
		n++
	}
	return n
}

// Push copies up to n bytes from in to out and returns the count moved.
func Push(in DataIn, out DataOut, n int) int {
	moved := 0
	for moved < n && in.HasNext() {
		if !out.Put(in.Next()) {
			break
		}
		moved++
	}
	return moved
}
