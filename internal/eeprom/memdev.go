package eeprom

// MemDevice is an in-memory EEPROM image. It backs tests and the
// payload of file-backed images.
type MemDevice struct {
	cells []byte
}

// NewMemDevice returns an image of size bytes with every cell erased.
func NewMemDevice(size Pointer) *MemDevice {
	cells := make([]byte, size)
	for i := range cells {
		cells[i] = Erased
	}
	return &MemDevice{cells: cells}
}

// FromBytes wraps an existing image payload without copying.
func FromBytes(p []byte) *MemDevice {
	return &MemDevice{cells: p}
}

func (d *MemDevice) ReadByte(p Pointer) byte {
	if int(p) >= len(d.cells) {
		return Erased
	}
	return d.cells[p]
}

func (d *MemDevice) WriteByte(p Pointer, b byte) {
	if int(p) >= len(d.cells) {
		return
	}
	d.cells[p] = b
}

func (d *MemDevice) ReadBlock(p Pointer, dst []byte) {
	for i := range dst {
		dst[i] = d.ReadByte(p + Pointer(i))
	}
}

func (d *MemDevice) WriteBlock(p Pointer, src []byte) {
	for i, b := range src {
		d.WriteByte(p+Pointer(i), b)
	}
}

func (d *MemDevice) Len() Pointer {
	return Pointer(len(d.cells))
}

// Bytes returns the live cell slice.
func (d *MemDevice) Bytes() []byte {
	return d.cells
}
