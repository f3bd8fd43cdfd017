package blocks

import (
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

// maxDeviceID caps the SysInfo payload.
const maxDeviceID = 32

// SysInfo reports the device identifier as a fixed read-only value in
// the system container.
type SysInfo struct {
	object.BasicObject
	id []byte
}

func NewSysInfo(deviceID string) *SysInfo {
	id := []byte(deviceID)
	if len(id) > maxDeviceID {
		id = id[:maxDeviceID]
	}
	return &SysInfo{id: id}
}

func (s *SysInfo) ObjectFlags() object.Flags {
	return object.FlagValue | object.FlagNotLogged | object.FlagStatic
}

func (s *SysInfo) TypeID() object.TypeID { return TypeSysInfo }

func (s *SysInfo) ReadTo(out stream.DataOut) object.Status {
	if !out.Write(s.id) {
		return object.StatusStreamError
	}
	return object.StatusOK
}

func (s *SysInfo) ReadStreamSize() uint8 { return uint8(len(s.id)) }

// DeviceID returns the identifier as text.
func (s *SysInfo) DeviceID() string { return string(s.id) }

// CurrentTicks reports milliseconds since boot. The reading changes on
// its own, and logging every pass would be noise.
type CurrentTicks struct {
	object.BasicObject
	millis func() uint32
}

func NewCurrentTicks(millis func() uint32) *CurrentTicks {
	return &CurrentTicks{millis: millis}
}

func (c *CurrentTicks) ObjectFlags() object.Flags {
	return object.FlagValue | object.FlagHasState | object.FlagNotLogged | object.FlagStatic
}

func (c *CurrentTicks) TypeID() object.TypeID { return TypeCurrentTicks }

func (c *CurrentTicks) ReadTo(out stream.DataOut) object.Status {
	ms := c.millis()
	for i := 0; i < 4; i++ {
		if !out.Put(byte(ms >> (8 * i))) {
			return object.StatusStreamError
		}
	}
	return object.StatusOK
}

func (c *CurrentTicks) ReadStreamSize() uint8 { return 4 }

// ActiveProfile reports the persisted active profile id as a signed
// byte, -1 when none is active. Activation goes through the command
// set, not through a value write.
type ActiveProfile struct {
	object.BasicObject
	current func() int8
}

func NewActiveProfile(current func() int8) *ActiveProfile {
	return &ActiveProfile{current: current}
}

func (a *ActiveProfile) ObjectFlags() object.Flags {
	return object.FlagValue | object.FlagHasState | object.FlagNotLogged | object.FlagStatic
}

func (a *ActiveProfile) TypeID() object.TypeID { return TypeActiveProfile }

func (a *ActiveProfile) ReadTo(out stream.DataOut) object.Status {
	if !out.Put(byte(a.current())) {
		return object.StatusStreamError
	}
	return object.StatusOK
}

func (a *ActiveProfile) ReadStreamSize() uint8 { return 1 }
