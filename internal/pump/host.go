package pump

import "time"

// Timer is a repeating timer handle returned by a Host.
type Timer interface {
	// Invalidate cancels the timer. No firing may start after it returns.
	Invalidate()
}

// Host is the run loop the driver attaches to. The driver only consumes this
// interface; hosts implement it.
type Host interface {
	// ScheduleRepeating arranges for fn to be called on the host thread
	// roughly every period until the returned Timer is invalidated.
	ScheduleRepeating(period time.Duration, fn func()) (Timer, error)

	// IsHostThread reports whether the caller runs on the host thread.
	IsHostThread() bool
}
