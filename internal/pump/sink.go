package pump

import (
	"time"

	"github.com/specialistvlad/heartbeat/internal/registry"
)

// Diagnostic describes one failure observed by the driver: a callback that
// failed during a drain, or a tick that was delivered on the wrong thread.
type Diagnostic struct {
	Tick      uint64
	At        time.Time
	Token     registry.Token
	Receiver  any
	Operation string
	Err       error
}

// Sink receives diagnostics. Report is called on the host thread from inside
// Tick and must not block for long.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(d Diagnostic)

// Report implements Sink.
func (f SinkFunc) Report(d Diagnostic) { f(d) }
