package persist

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
)

// Image layout:
//
//	[0]  magic u16
//	[2]  version u8
//	[3]  active profile i8 (-1 none)
//	[4]  table: MaxProfiles x {inUse u8, used u16}
//	[16] profile regions, equal fixed capacity
//
// Fixed regions keep every live record at a stable absolute offset for
// as long as its profile exists; nothing ever shifts across profiles.
const (
	MaxProfiles = 4

	storeMagic    uint16 = 0x5342
	storeVersion  byte   = 1
	headerLen            = 4
	tableEntryLen        = 3
	dataStart            = headerLen + MaxProfiles*tableEntryLen

	minRegionLen = 16
)

var (
	ErrBadStoreMagic   = errors.New("persist: bad store magic")
	ErrBadStoreVersion = errors.New("persist: unsupported store version")
	ErrImageTooSmall   = errors.New("persist: image too small")
)

// ProfileID names one profile slot; valid ids are 0..MaxProfiles-1.
type ProfileID int8

// NoProfile is the active-profile marker for "none".
const NoProfile ProfileID = -1

// ProfileInfo describes one profile slot.
type ProfileInfo struct {
	ID       ProfileID
	InUse    bool
	Active   bool
	Used     uint16
	Capacity uint16
}

// Store manages object-definition profiles inside an EEPROM image.
// It tracks where records live; replaying them into a live tree is the
// caller's concern.
type Store struct {
	acc       eeprom.Access
	regionLen eeprom.Pointer
}

// Format initializes a blank store over acc and opens it.
func Format(acc eeprom.Access) (*Store, error) {
	s, err := newStore(acc)
	if err != nil {
		return nil, err
	}
	s.Wipe()
	return s, nil
}

// Wipe reformats the image in place, dropping every profile. The store
// keeps no state outside the image, so it stays usable afterwards.
func (s *Store) Wipe() {
	var hdr [headerLen]byte
	binary.BigEndian.PutUint16(hdr[0:2], storeMagic)
	hdr[2] = storeVersion
	hdr[3] = byte(0xFF) // NoProfile
	s.acc.WriteBlock(0, hdr[:])
	for id := ProfileID(0); id < MaxProfiles; id++ {
		s.setState(id, false, 0)
	}
}

// Open validates an existing store header.
func Open(acc eeprom.Access) (*Store, error) {
	s, err := newStore(acc)
	if err != nil {
		return nil, err
	}
	var hdr [headerLen]byte
	acc.ReadBlock(0, hdr[:])
	if binary.BigEndian.Uint16(hdr[0:2]) != storeMagic {
		return nil, ErrBadStoreMagic
	}
	if hdr[2] != storeVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadStoreVersion, hdr[2])
	}
	return s, nil
}

func newStore(acc eeprom.Access) (*Store, error) {
	if acc.Len() <= dataStart {
		return nil, ErrImageTooSmall
	}
	regionLen := (acc.Len() - dataStart) / MaxProfiles
	if regionLen < minRegionLen {
		return nil, ErrImageTooSmall
	}
	return &Store{acc: acc, regionLen: regionLen}, nil
}

// Capacity returns the fixed byte capacity of one profile region.
func (s *Store) Capacity() uint16 {
	return uint16(s.regionLen)
}

// Active returns the persisted active profile, or NoProfile.
func (s *Store) Active() ProfileID {
	id := ProfileID(s.acc.ReadByte(3))
	if id < 0 || id >= MaxProfiles {
		return NoProfile
	}
	if inUse, _ := s.state(id); !inUse {
		return NoProfile
	}
	return id
}

func (s *Store) setActive(id ProfileID) {
	s.acc.WriteByte(3, byte(id))
}

func (s *Store) state(id ProfileID) (inUse bool, used uint16) {
	off := eeprom.Pointer(headerLen + int(id)*tableEntryLen)
	var entry [tableEntryLen]byte
	s.acc.ReadBlock(off, entry[:])
	return entry[0] == 1, binary.BigEndian.Uint16(entry[1:3])
}

func (s *Store) setState(id ProfileID, inUse bool, used uint16) {
	off := eeprom.Pointer(headerLen + int(id)*tableEntryLen)
	var entry [tableEntryLen]byte
	if inUse {
		entry[0] = 1
	}
	binary.BigEndian.PutUint16(entry[1:3], used)
	s.acc.WriteBlock(off, entry[:])
}

func (s *Store) regionStart(id ProfileID) eeprom.Pointer {
	return dataStart + eeprom.Pointer(id)*s.regionLen
}

func validProfile(id ProfileID) bool {
	return id >= 0 && id < MaxProfiles
}

// CreateProfile claims the lowest unused profile slot.
func (s *Store) CreateProfile() (ProfileID, object.Status) {
	for id := ProfileID(0); id < MaxProfiles; id++ {
		if inUse, _ := s.state(id); inUse {
			continue
		}
		s.eraseRegion(id)
		s.setState(id, true, 0)
		return id, object.StatusOK
	}
	return NoProfile, object.StatusInsufficientSpace
}

// DeleteProfile releases a profile slot. The active profile cannot be
// deleted.
func (s *Store) DeleteProfile(id ProfileID) object.Status {
	if !validProfile(id) {
		return object.StatusProfileNotFound
	}
	if inUse, _ := s.state(id); !inUse {
		return object.StatusProfileNotFound
	}
	if s.Active() == id {
		return object.StatusProfileInUse
	}
	s.setState(id, false, 0)
	return object.StatusOK
}

// Activate persists id as the active profile. Replaying its records is
// the caller's job.
func (s *Store) Activate(id ProfileID) object.Status {
	if !validProfile(id) {
		return object.StatusProfileNotFound
	}
	if inUse, _ := s.state(id); !inUse {
		return object.StatusProfileNotFound
	}
	s.setActive(id)
	return object.StatusOK
}

// Deactivate clears the active profile.
func (s *Store) Deactivate() {
	s.setActive(NoProfile)
}

// AppendRecord stores one creation record in the profile's region and
// returns the absolute payload address the created object rehydrates
// with.
func (s *Store) AppendRecord(id ProfileID, chain object.Chain, typ object.TypeID, payload []byte) (eeprom.Pointer, object.Status) {
	if !validProfile(id) {
		return eeprom.InvalidPointer, object.StatusProfileNotFound
	}
	inUse, used := s.state(id)
	if !inUse {
		return eeprom.InvalidPointer, object.StatusProfileNotFound
	}
	rec, ok := encodeRecord(chain, typ, payload)
	if !ok {
		return eeprom.InvalidPointer, object.StatusInvalidDefinition
	}
	if eeprom.Pointer(used)+eeprom.Pointer(len(rec)) > s.regionLen {
		return eeprom.InvalidPointer, object.StatusInsufficientSpace
	}
	start := s.regionStart(id) + eeprom.Pointer(used)
	s.acc.WriteBlock(start, rec)
	s.setState(id, true, used+uint16(len(rec)))
	return start + payloadOffset(chain), object.StatusOK
}

// Records returns the profile's live records in storage order.
func (s *Store) Records(id ProfileID) ([]Record, object.Status) {
	if !validProfile(id) {
		return nil, object.StatusProfileNotFound
	}
	inUse, used := s.state(id)
	if !inUse {
		return nil, object.StatusProfileNotFound
	}
	start := s.regionStart(id)
	var out []Record
	st := scanRegion(s.acc, start, start+eeprom.Pointer(used), func(rec Record) bool {
		if !rec.Disposed {
			out = append(out, rec)
		}
		return true
	})
	if !st.OK() {
		return nil, st
	}
	return out, object.StatusOK
}

// DisposeRecord marks the first live record with the given chain as
// disposed. The record's bytes stay in place until the profile is
// compacted.
func (s *Store) DisposeRecord(id ProfileID, chain object.Chain) object.Status {
	if !validProfile(id) {
		return object.StatusProfileNotFound
	}
	inUse, used := s.state(id)
	if !inUse {
		return object.StatusProfileNotFound
	}
	start := s.regionStart(id)
	found := false
	st := scanRegion(s.acc, start, start+eeprom.Pointer(used), func(rec Record) bool {
		if rec.Disposed || rec.Chain.String() != chain.String() {
			return true
		}
		s.acc.WriteByte(rec.Start, CmdDisposed)
		found = true
		return false
	})
	if !st.OK() {
		return st
	}
	if !found {
		return object.StatusInvalidChain
	}
	return object.StatusOK
}

// CompactProfile rewrites a profile's live records contiguously,
// reclaiming disposed space. Payload addresses move, so the profile
// must not be active.
func (s *Store) CompactProfile(id ProfileID) object.Status {
	if !validProfile(id) {
		return object.StatusProfileNotFound
	}
	inUse, used := s.state(id)
	if !inUse {
		return object.StatusProfileNotFound
	}
	if s.Active() == id {
		return object.StatusProfileInUse
	}
	start := s.regionStart(id)
	var live []Record
	st := scanRegion(s.acc, start, start+eeprom.Pointer(used), func(rec Record) bool {
		if !rec.Disposed {
			live = append(live, rec)
		}
		return true
	})
	if !st.OK() {
		return st
	}

	s.eraseRegion(id)
	pos := start
	for _, rec := range live {
		enc, ok := encodeRecord(rec.Chain, rec.Type, rec.Payload)
		if !ok {
			return object.StatusStreamError
		}
		s.acc.WriteBlock(pos, enc)
		pos += eeprom.Pointer(len(enc))
	}
	s.setState(id, true, uint16(pos-start))
	return object.StatusOK
}

// ListProfiles reports every profile slot.
func (s *Store) ListProfiles() []ProfileInfo {
	active := s.Active()
	out := make([]ProfileInfo, 0, MaxProfiles)
	for id := ProfileID(0); id < MaxProfiles; id++ {
		inUse, used := s.state(id)
		out = append(out, ProfileInfo{
			ID:       id,
			InUse:    inUse,
			Active:   id == active,
			Used:     used,
			Capacity: s.Capacity(),
		})
	}
	return out
}

// UsedBytes sums the record bytes of every profile in use.
func (s *Store) UsedBytes() uint32 {
	var total uint32
	for id := ProfileID(0); id < MaxProfiles; id++ {
		if inUse, used := s.state(id); inUse {
			total += uint32(used)
		}
	}
	return total
}

func (s *Store) eraseRegion(id ProfileID) {
	start := s.regionStart(id)
	for i := eeprom.Pointer(0); i < s.regionLen; i++ {
		s.acc.WriteByte(start+i, eeprom.Erased)
	}
}
