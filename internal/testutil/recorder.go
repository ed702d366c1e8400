package testutil

import (
	"errors"
	"sync"
)

// ErrInjected is the failure returned by Recorder.Fail.
var ErrInjected = errors.New("injected failure")

// Recorder collects labels appended by callbacks.
type Recorder struct {
	mu  sync.Mutex
	seq []string
}

// Append returns a callback that appends label to the recorded sequence.
func (r *Recorder) Append(label string) func() error {
	return func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seq = append(r.seq, label)
		return nil
	}
}

// Fail returns a callback that always fails with ErrInjected.
func (r *Recorder) Fail() func() error {
	return func() error { return ErrInjected }
}

// Seq returns a copy of the recorded sequence.
func (r *Recorder) Seq() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seq...)
}
