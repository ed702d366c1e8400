package testutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/heartbeat/internal/pump"
)

// FakeTimer is a timer created by FakeHost.
type FakeTimer struct {
	Period      time.Duration
	fn          func()
	invalidated atomic.Bool
}

// Invalidate implements pump.Timer.
func (t *FakeTimer) Invalidate() {
	t.invalidated.Store(true)
}

// Invalidated reports whether the timer was cancelled.
func (t *FakeTimer) Invalidated() bool {
	return t.invalidated.Load()
}

// FakeHost is a pump.Host whose timers only fire when the test calls Fire.
type FakeHost struct {
	mu     sync.Mutex
	timers []*FakeTimer

	// ScheduleErr, when set, is returned by ScheduleRepeating.
	ScheduleErr error

	offThread atomic.Bool
}

// NewFakeHost creates a host whose thread check passes.
func NewFakeHost() *FakeHost {
	return &FakeHost{}
}

// ScheduleRepeating implements pump.Host.
func (h *FakeHost) ScheduleRepeating(period time.Duration, fn func()) (pump.Timer, error) {
	if h.ScheduleErr != nil {
		return nil, h.ScheduleErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	t := &FakeTimer{Period: period, fn: fn}
	h.timers = append(h.timers, t)
	return t, nil
}

// IsHostThread implements pump.Host.
func (h *FakeHost) IsHostThread() bool {
	return !h.offThread.Load()
}

// SetOffThread makes subsequent thread checks fail (or pass again).
func (h *FakeHost) SetOffThread(off bool) {
	h.offThread.Store(off)
}

// Active returns the timers that have not been invalidated.
func (h *FakeHost) Active() []*FakeTimer {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*FakeTimer
	for _, t := range h.timers {
		if !t.Invalidated() {
			out = append(out, t)
		}
	}
	return out
}

// Fire invokes every active timer once, like one host loop iteration in
// which all timers are due.
func (h *FakeHost) Fire() {
	for _, t := range h.Active() {
		t.fn()
	}
}
