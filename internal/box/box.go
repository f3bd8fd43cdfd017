// Package box assembles the object runtime: the EEPROM-backed profile
// store, the registry of creatable types, the system and root
// containers, and the command handler, all serialized behind one
// mutex.
package box

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/slotbox/internal/admin"
	"github.com/danmuck/slotbox/internal/blocks"
	"github.com/danmuck/slotbox/internal/command"
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/logging"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/observability"
	"github.com/danmuck/slotbox/internal/persist"
	"github.com/danmuck/slotbox/internal/stream"
)

var ErrReplayFailed = errors.New("box: profile replay failed")

// Options configures a box runtime.
type Options struct {
	// DeviceID names the box in logs, metrics, and the system info
	// value.
	DeviceID string
	// Ticks supplies the clock. Nil selects wall time.
	Ticks Ticks
}

// Box owns one object tree and its persistence. Commands, update
// cycles, and admin snapshots all serialize on the internal mutex, so
// none of them observes a half-applied change.
type Box struct {
	mu       sync.Mutex
	deviceID string
	ticks    Ticks
	acc      eeprom.Access
	store    *persist.Store
	reg      *object.Registry
	system   object.Container
	root     object.OpenContainer
	handler  *command.Handler
}

var _ admin.View = (*Box)(nil)

// New builds a box over acc. A blank or foreign image is formatted in
// place; a recognized one has its active profile replayed into the
// tree.
func New(acc eeprom.Access, opts Options) (*Box, error) {
	ticks := opts.Ticks
	if ticks == nil {
		ticks = NewWallTicks()
	}

	store, err := persist.Open(acc)
	if err != nil {
		if !errors.Is(err, persist.ErrBadStoreMagic) {
			return nil, err
		}
		logging.Infof("box.New formatting image device_id=%q size=%d", opts.DeviceID, acc.Len())
		store, err = persist.Format(acc)
		if err != nil {
			return nil, err
		}
	}

	reg := object.NewRegistry()
	if err := blocks.RegisterDefaults(reg, acc); err != nil {
		return nil, err
	}

	b := &Box{
		deviceID: opts.DeviceID,
		ticks:    ticks,
		acc:      acc,
		store:    store,
		reg:      reg,
		root:     object.NewDynamicContainer(),
	}
	b.system = object.NewFixedContainer(
		blocks.NewSysInfo(opts.DeviceID),
		blocks.NewCurrentTicks(b.ticks.Millis),
		blocks.NewActiveProfile(func() int8 { return int8(b.store.Active()) }),
	)
	b.handler = command.NewHandler(b.system, b.root, reg, store)
	b.handler.Observe(func(op command.Opcode, st object.Status, elapsed time.Duration) {
		observability.RecordCommand(b.deviceID, op.String(), st.String(), elapsed)
	})

	if st := b.replay(); !st.OK() {
		return nil, fmt.Errorf("%w: %v", ErrReplayFailed, st)
	}
	return b, nil
}

func (b *Box) replay() object.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler.Replay()
}

// Dispatch runs one command request against the tree.
func (b *Box) Dispatch(in stream.DataIn, out stream.DataOut) object.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler.Dispatch(in, out)
}

// DeviceID reports the configured device name.
func (b *Box) DeviceID() string {
	return b.deviceID
}

// Millis reports the box clock.
func (b *Box) Millis() uint32 {
	return b.ticks.Millis()
}

// ActiveProfile reports the persisted active profile id, NoProfile
// encoded as -1.
func (b *Box) ActiveProfile() int8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int8(b.store.Active())
}

// LogValues emits one structured log line per resident logged value.
func (b *Box) LogValues() {
	b.mu.Lock()
	defer b.mu.Unlock()
	object.WalkRoot(b.root, func(o object.Object, chain object.Chain, enter bool) bool {
		if !enter || !object.IsLoggedValue(o) {
			return false
		}
		v, ok := o.(object.Value)
		if !ok {
			return false
		}
		p, st := object.ReadValue(v)
		if !st.OK() {
			return false
		}
		logging.Infof("box.Box.LogValues device_id=%q chain=%q type=%#x value=%s",
			b.deviceID, chain, o.TypeID(), hex.EncodeToString(p))
		return false
	})
}

// Health implements admin.View.
func (b *Box) Health() admin.Health {
	b.mu.Lock()
	defer b.mu.Unlock()
	return admin.Health{
		DeviceID:      b.deviceID,
		UptimeMS:      b.ticks.Millis(),
		ActiveProfile: int8(b.store.Active()),
		Objects:       b.residentLocked(),
	}
}

// Objects implements admin.View.
func (b *Box) Objects() []admin.ObjectInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	infos := make([]admin.ObjectInfo, 0, b.residentLocked())
	object.WalkRoot(b.root, func(o object.Object, chain object.Chain, enter bool) bool {
		if !enter {
			return false
		}
		info := admin.ObjectInfo{
			Chain: chain.String(),
			Type:  uint8(o.TypeID()),
			Flags: o.ObjectFlags().String(),
		}
		if v, ok := o.(object.Value); ok && object.IsValue(o) {
			if p, st := object.ReadValue(v); st.OK() {
				info.Value = hex.EncodeToString(p)
			}
		}
		infos = append(infos, info)
		return false
	})
	return infos
}

// Profiles implements admin.View.
func (b *Box) Profiles() []admin.ProfileInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	slots := b.store.ListProfiles()
	infos := make([]admin.ProfileInfo, 0, len(slots))
	for _, s := range slots {
		infos = append(infos, admin.ProfileInfo{
			ID:       int8(s.ID),
			InUse:    s.InUse,
			Active:   s.Active,
			Used:     s.Used,
			Capacity: s.Capacity,
		})
	}
	return infos
}

// Storage implements admin.View.
func (b *Box) Storage() admin.Storage {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := admin.Storage{
		Size: uint16(b.acc.Len()),
		Used: b.store.UsedBytes(),
	}
	for _, s := range b.store.ListProfiles() {
		if s.InUse {
			st.Profiles++
		}
	}
	if d, ok := b.acc.(interface{ Dirty() bool }); ok {
		st.Dirty = d.Dirty()
	}
	return st
}

// Resident reports how many objects the root tree currently holds.
func (b *Box) Resident() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.residentLocked()
}

func (b *Box) residentLocked() int {
	n := 0
	object.WalkRoot(b.root, func(_ object.Object, _ object.Chain, enter bool) bool {
		if enter {
			n++
		}
		return false
	})
	return n
}
