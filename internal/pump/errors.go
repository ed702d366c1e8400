package pump

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when the driver is running.
	ErrAlreadyRunning = errors.New("pump: already running")

	// ErrWrongThread is reported when the host delivers a tick off its own
	// thread.
	ErrWrongThread = errors.New("pump: tick delivered off the host thread")
)
