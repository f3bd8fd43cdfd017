package box

import "time"

// Ticks is the box's millisecond clock. The runtime never touches wall
// time directly so tests can drive update cycles deterministically.
type Ticks interface {
	// Millis reports milliseconds since the box started, wrapping at
	// the uint32 range like a hardware tick counter.
	Millis() uint32
	// Sleep blocks the caller for ms milliseconds.
	Sleep(ms uint32)
}

// WallTicks implements Ticks over the process clock.
type WallTicks struct {
	start time.Time
}

func NewWallTicks() *WallTicks {
	return &WallTicks{start: time.Now()}
}

func (w *WallTicks) Millis() uint32 {
	return uint32(time.Since(w.start).Milliseconds())
}

func (w *WallTicks) Sleep(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
