// Package runloop provides the host thread the pump runs on.
//
// A Loop owns one goroutine, pinned to its OS thread for the duration of Run.
// Everything that must happen "on the main thread" is either submitted with
// Submit or attached to a repeating timer with ScheduleRepeating; both are
// executed only on the loop goroutine, one at a time.
//
// # Timers
//
// Timer periods are minimum spacings. A timer that becomes due late fires once
// and re-arms one period after it fired; missed firings are coalesced rather
// than replayed. An invalidated timer never fires again, even if it was already
// due when Invalidate was called.
//
// # Thread Safety
//
// Submit, ScheduleRepeating, Timer.Invalidate, IsHostThread and Shutdown are
// safe to call from any goroutine. A task or timer callback that panics is
// recovered and logged, and the loop keeps running.
package runloop
