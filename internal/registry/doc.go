// Package registry holds the callbacks that the pump invokes on every tick.
//
// Each registration binds a receiver and an operation name to a zero-argument
// function and returns a Token. Tokens key the entries so that a receiver can
// unregister itself when it goes away; without removal the list only grows and
// keeps invoking stale receivers.
//
// # Drain Semantics
//
// Drain snapshots the entries and invokes each exactly once, in registration
// order. A callback that returns an error or panics produces a failed Result;
// the drain always continues with the next entry and never propagates the
// failure to its caller. Registrations and removals made by a callback while a
// drain is in progress take effect on the next drain.
//
// # Thread-Safety
//
// The entry list is guarded by a mutex so that any goroutine may register or
// remove callbacks. The mutex is never held while a callback runs, so callbacks
// may freely call back into the registry.
package registry
