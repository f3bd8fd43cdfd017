package persist

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
)

func newTestStore(t *testing.T) (*Store, *eeprom.MemDevice) {
	t.Helper()
	dev := eeprom.NewMemDevice(512)
	s, err := Format(dev)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	return s, dev
}

func TestFormatOpenRoundTrip(t *testing.T) {
	s, dev := newTestStore(t)
	if s.Active() != NoProfile {
		t.Fatalf("fresh store active = %d", s.Active())
	}

	reopened, err := Open(dev)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if reopened.Capacity() != s.Capacity() {
		t.Fatalf("capacity changed across open")
	}
}

func TestOpenRejectsBlankImage(t *testing.T) {
	if _, err := Open(eeprom.NewMemDevice(512)); !errors.Is(err, ErrBadStoreMagic) {
		t.Fatalf("open blank image: %v, want ErrBadStoreMagic", err)
	}
}

func TestOpenRejectsTinyImage(t *testing.T) {
	if _, err := Open(eeprom.NewMemDevice(32)); !errors.Is(err, ErrImageTooSmall) {
		t.Fatalf("open tiny image: %v, want ErrImageTooSmall", err)
	}
}

func TestProfileLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	id, st := s.CreateProfile()
	if !st.OK() || id != 0 {
		t.Fatalf("create: id=%d st=%v", id, st)
	}
	second, st := s.CreateProfile()
	if !st.OK() || second != 1 {
		t.Fatalf("second create: id=%d st=%v", second, st)
	}

	if st := s.Activate(id); !st.OK() {
		t.Fatalf("activate: %v", st)
	}
	if s.Active() != id {
		t.Fatalf("active = %d, want %d", s.Active(), id)
	}

	if st := s.DeleteProfile(id); st != object.StatusProfileInUse {
		t.Fatalf("deleting active profile: %v, want profile in use", st)
	}
	s.Deactivate()
	if st := s.DeleteProfile(id); !st.OK() {
		t.Fatalf("delete: %v", st)
	}
	if st := s.Activate(id); st != object.StatusProfileNotFound {
		t.Fatalf("activating deleted profile: %v, want not found", st)
	}
	if st := s.DeleteProfile(9); st != object.StatusProfileNotFound {
		t.Fatalf("deleting bad id: %v, want not found", st)
	}
}

func TestCreateProfileExhaustsSlots(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < MaxProfiles; i++ {
		if _, st := s.CreateProfile(); !st.OK() {
			t.Fatalf("create %d: %v", i, st)
		}
	}
	if _, st := s.CreateProfile(); st != object.StatusInsufficientSpace {
		t.Fatalf("fifth profile: %v, want insufficient space", st)
	}
}

func TestAppendRecordAddressAndLengthPrefix(t *testing.T) {
	s, dev := newTestStore(t)
	id, _ := s.CreateProfile()

	payload := []byte{0xDE, 0xAD}
	addr, st := s.AppendRecord(id, object.Chain{1, 2}, 7, payload)
	if !st.OK() {
		t.Fatalf("append: %v", st)
	}
	// The length prefix sits immediately before the payload address.
	if n := dev.ReadByte(addr - 1); n != 2 {
		t.Fatalf("length prefix = %d, want 2", n)
	}
	got := make([]byte, 2)
	dev.ReadBlock(addr, got)
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload at addr = %v", got)
	}

	recs, st := s.Records(id)
	if !st.OK() || len(recs) != 1 {
		t.Fatalf("records: %v st=%v", recs, st)
	}
	rec := recs[0]
	if rec.Addr != addr || rec.Type != 7 || rec.Chain.String() != "1.2" {
		t.Fatalf("record = %+v", rec)
	}
	if !bytes.Equal(rec.Payload, payload) {
		t.Fatalf("record payload = %v", rec.Payload)
	}
}

func TestAppendRecordRegionFull(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.CreateProfile()

	big := make([]byte, 64)
	var st object.Status
	appended := 0
	for {
		_, st = s.AppendRecord(id, object.Chain{0}, 1, big)
		if !st.OK() {
			break
		}
		appended++
	}
	if st != object.StatusInsufficientSpace {
		t.Fatalf("append into full region: %v", st)
	}
	if appended == 0 {
		t.Fatalf("no record fit the region")
	}
}

func TestAppendRecordUnusedProfile(t *testing.T) {
	s, _ := newTestStore(t)
	if _, st := s.AppendRecord(2, object.Chain{0}, 1, nil); st != object.StatusProfileNotFound {
		t.Fatalf("append to unused profile: %v", st)
	}
}

func TestDisposeRecordSkipsAndCompactReclaims(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.CreateProfile()

	if _, st := s.AppendRecord(id, object.Chain{0}, 1, []byte{1}); !st.OK() {
		t.Fatalf("append: %v", st)
	}
	if _, st := s.AppendRecord(id, object.Chain{1}, 1, []byte{2}); !st.OK() {
		t.Fatalf("append: %v", st)
	}
	if _, st := s.AppendRecord(id, object.Chain{2}, 1, []byte{3}); !st.OK() {
		t.Fatalf("append: %v", st)
	}

	if st := s.DisposeRecord(id, object.Chain{1}); !st.OK() {
		t.Fatalf("dispose: %v", st)
	}
	recs, st := s.Records(id)
	if !st.OK() || len(recs) != 2 {
		t.Fatalf("records after dispose: %d st=%v", len(recs), st)
	}
	if recs[0].Chain.String() != "0" || recs[1].Chain.String() != "2" {
		t.Fatalf("live chains: %v %v", recs[0].Chain, recs[1].Chain)
	}

	if st := s.DisposeRecord(id, object.Chain{9}); st != object.StatusInvalidChain {
		t.Fatalf("dispose missing chain: %v", st)
	}

	_, usedBefore := s.state(id)
	if st := s.CompactProfile(id); !st.OK() {
		t.Fatalf("compact: %v", st)
	}
	_, usedAfter := s.state(id)
	if usedAfter >= usedBefore {
		t.Fatalf("compact did not reclaim: %d -> %d", usedBefore, usedAfter)
	}

	recs, st = s.Records(id)
	if !st.OK() || len(recs) != 2 {
		t.Fatalf("records after compact: %d st=%v", len(recs), st)
	}
	if recs[0].Payload[0] != 1 || recs[1].Payload[0] != 3 {
		t.Fatalf("payloads after compact: %v %v", recs[0].Payload, recs[1].Payload)
	}
}

func TestCompactActiveProfileRefused(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.CreateProfile()
	s.Activate(id)
	if st := s.CompactProfile(id); st != object.StatusProfileInUse {
		t.Fatalf("compacting active profile: %v", st)
	}
}

func TestProfileRegionsIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.CreateProfile()
	b, _ := s.CreateProfile()

	s.AppendRecord(a, object.Chain{0}, 1, []byte{0xAA})
	s.AppendRecord(b, object.Chain{0}, 1, []byte{0xBB})

	ra, _ := s.Records(a)
	rb, _ := s.Records(b)
	if len(ra) != 1 || len(rb) != 1 {
		t.Fatalf("records: a=%d b=%d", len(ra), len(rb))
	}
	if ra[0].Payload[0] != 0xAA || rb[0].Payload[0] != 0xBB {
		t.Fatalf("cross-profile contamination: %v %v", ra[0].Payload, rb[0].Payload)
	}

	// Deleting one profile leaves the other's records untouched.
	if st := s.DeleteProfile(a); !st.OK() {
		t.Fatalf("delete: %v", st)
	}
	rb, _ = s.Records(b)
	if len(rb) != 1 || rb[0].Payload[0] != 0xBB {
		t.Fatalf("profile b corrupted by delete of a")
	}
}

func TestListProfiles(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.CreateProfile()
	s.Activate(id)

	list := s.ListProfiles()
	if len(list) != MaxProfiles {
		t.Fatalf("list length = %d", len(list))
	}
	if !list[0].InUse || !list[0].Active {
		t.Fatalf("profile 0 state: %+v", list[0])
	}
	if list[1].InUse {
		t.Fatalf("profile 1 should be unused")
	}
	if s.UsedBytes() != uint32(list[0].Used) {
		t.Fatalf("used bytes mismatch")
	}
}

func TestRecordsRejectCorruptRegion(t *testing.T) {
	s, dev := newTestStore(t)
	id, _ := s.CreateProfile()
	s.AppendRecord(id, object.Chain{0}, 1, []byte{1})

	// Clobber the cmd byte with an unknown marker.
	dev.WriteByte(s.regionStart(id), 0x7E)
	if _, st := s.Records(id); st != object.StatusStreamError {
		t.Fatalf("corrupt region scan: %v, want stream error", st)
	}
}
