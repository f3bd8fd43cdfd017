package box

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/slotbox/internal/command"
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/persist"
	"github.com/danmuck/slotbox/internal/stream"
	"github.com/danmuck/slotbox/internal/testutil/testlog"
)

// fakeTicks advances only when something sleeps, so cycle timing is
// fully deterministic.
type fakeTicks struct {
	now   uint32
	slept []uint32
}

func (f *fakeTicks) Millis() uint32 { return f.now }

func (f *fakeTicks) Sleep(ms uint32) {
	f.slept = append(f.slept, ms)
	f.now += ms
}

func newTestBox(t *testing.T) (*Box, *fakeTicks, *eeprom.MemDevice) {
	t.Helper()
	testlog.Start(t)
	dev := eeprom.NewMemDevice(512)
	ticks := &fakeTicks{}
	b, err := New(dev, Options{DeviceID: "box-test", Ticks: ticks})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, ticks, dev
}

func dispatch(t *testing.T, b *Box, req ...byte) []byte {
	t.Helper()
	out := stream.NewBufferOut(256)
	b.Dispatch(stream.NewBufferIn(req), out)
	if out.Overflowed() {
		t.Fatalf("response overflow for request % x", req)
	}
	return out.Bytes()
}

func mustOK(t *testing.T, resp []byte, op command.Opcode) []byte {
	t.Helper()
	if len(resp) < 2 || resp[0] != byte(op) || resp[1] != byte(object.StatusOK) {
		t.Fatalf("expected ok response for op %q, got % x", op, resp)
	}
	return resp[2:]
}

// startProfile creates and activates profile 0.
func startProfile(t *testing.T, b *Box) {
	t.Helper()
	payload := mustOK(t, dispatch(t, b, byte(command.OpCreateProfile)), command.OpCreateProfile)
	if len(payload) != 1 || payload[0] != 0 {
		t.Fatalf("expected profile id 0, got % x", payload)
	}
	mustOK(t, dispatch(t, b, byte(command.OpActivateProfile), 0x00), command.OpActivateProfile)
}

func TestNewFormatsBlankImage(t *testing.T) {
	b, _, _ := newTestBox(t)

	if got := b.ActiveProfile(); got != -1 {
		t.Fatalf("expected no active profile, got %d", got)
	}
	st := b.Storage()
	if st.Size != 512 || st.Profiles != 0 {
		t.Fatalf("unexpected storage snapshot: %+v", st)
	}
	profiles := b.Profiles()
	if len(profiles) != int(persist.MaxProfiles) {
		t.Fatalf("expected %d profile slots, got %d", persist.MaxProfiles, len(profiles))
	}
	for _, p := range profiles {
		if p.InUse || p.Active {
			t.Fatalf("blank image should have no profiles in use: %+v", p)
		}
	}
}

func TestNewFailsOnUnsupportedStoreVersion(t *testing.T) {
	testlog.Start(t)
	dev := eeprom.NewMemDevice(256)
	if _, err := persist.Format(dev); err != nil {
		t.Fatalf("Format: %v", err)
	}
	dev.WriteByte(2, 0xEE)

	_, err := New(dev, Options{DeviceID: "box-test", Ticks: &fakeTicks{}})
	if !errors.Is(err, persist.ErrBadStoreVersion) {
		t.Fatalf("expected ErrBadStoreVersion, got %v", err)
	}
}

func TestNewReplaysActiveProfile(t *testing.T) {
	b, _, dev := newTestBox(t)
	startProfile(t, b)
	mustOK(t, dispatch(t, b,
		byte(command.OpCreateObject), 0x00, 0x03, 0x02, 0x34, 0x12,
	), command.OpCreateObject)

	reopened, err := New(dev, Options{DeviceID: "box-test", Ticks: &fakeTicks{}})
	if err != nil {
		t.Fatalf("New over populated image: %v", err)
	}
	if got := reopened.Resident(); got != 1 {
		t.Fatalf("expected 1 replayed object, got %d", got)
	}
	payload := mustOK(t, dispatch(t, reopened, byte(command.OpReadValue), 0x00), command.OpReadValue)
	if !bytes.Equal(payload, []byte{0x02, 0x34, 0x12}) {
		t.Fatalf("unexpected replayed value payload: % x", payload)
	}
}

func TestSnapshotsReflectTree(t *testing.T) {
	b, _, _ := newTestBox(t)
	startProfile(t, b)
	mustOK(t, dispatch(t, b,
		byte(command.OpCreateObject), 0x00, 0x01, 0x00,
	), command.OpCreateObject)
	mustOK(t, dispatch(t, b,
		byte(command.OpCreateObject), 0x80, 0x00, 0x02, 0x01, 0x2A,
	), command.OpCreateObject)

	h := b.Health()
	if h.DeviceID != "box-test" || h.Objects != 2 || h.ActiveProfile != 0 {
		t.Fatalf("unexpected health snapshot: %+v", h)
	}

	objects := b.Objects()
	if len(objects) != 2 {
		t.Fatalf("expected 2 object entries, got %+v", objects)
	}
	if objects[0].Chain != "0" || objects[0].Type != 0x01 || objects[0].Value != "" {
		t.Fatalf("unexpected group entry: %+v", objects[0])
	}
	if objects[1].Chain != "0.0" || objects[1].Type != 0x02 || objects[1].Value != "2a" {
		t.Fatalf("unexpected scalar entry: %+v", objects[1])
	}

	profiles := b.Profiles()
	if !profiles[0].InUse || !profiles[0].Active || profiles[0].Used == 0 {
		t.Fatalf("unexpected profile slot 0: %+v", profiles[0])
	}

	st := b.Storage()
	if st.Profiles != 1 || st.Used == 0 {
		t.Fatalf("unexpected storage snapshot: %+v", st)
	}
}

func TestSystemValuesUseBoxClock(t *testing.T) {
	b, ticks, _ := newTestBox(t)
	ticks.now = 0x01020304

	payload := mustOK(t, dispatch(t, b, byte(command.OpReadSystemValue), 0x01), command.OpReadSystemValue)
	if !bytes.Equal(payload, []byte{0x04, 0x04, 0x03, 0x02, 0x01}) {
		t.Fatalf("unexpected ticks payload: % x", payload)
	}
	if got := b.Millis(); got != 0x01020304 {
		t.Fatalf("unexpected Millis: %#x", got)
	}
}
