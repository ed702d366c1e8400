package registry

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrCallbackFailed wraps every failure produced by a registered callback, so
// callers can test for it with errors.Is regardless of the underlying cause.
var ErrCallbackFailed = errors.New("registry: callback failed")

// PanicError is the failure recorded for a callback that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("callback panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// invoke runs a single callback and converts both error returns and panics
// into a wrapped ErrCallbackFailed.
func invoke(cb Callback) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %w", ErrCallbackFailed, cb.Operation, &PanicError{Value: rec, Stack: debug.Stack()})
		}
	}()

	if cb.Func == nil {
		return fmt.Errorf("%w: %s: no function bound", ErrCallbackFailed, cb.Operation)
	}
	if ferr := cb.Func(); ferr != nil {
		return fmt.Errorf("%w: %s: %w", ErrCallbackFailed, cb.Operation, ferr)
	}
	return nil
}
