// Package pump drives the callback registry from a host-owned run loop.
//
// # Why Pump Exists
//
// Some hosts own the only thread that may touch their state (a UI main thread,
// an event loop pinned to one goroutine). Work that lives on that thread but is
// scheduled cooperatively never gets CPU time unless something on the same
// thread periodically blocks. The Driver is that periodic block: it registers a
// single repeating timer with the host and, on every firing, yields for a fixed
// minimum duration and then drains the registry once.
//
// # Tick Order
//
//  1. Verify the tick runs on the host thread. A tick delivered on any other
//     thread is reported as ErrWrongThread and skipped.
//  2. Yield for Config.Yield. This is unconditional and happens before the
//     drain.
//  3. Drain the registry once. Failed callbacks are reported to the Sink and
//     logged; they never escape Tick.
//
// # Lifecycle
//
// Start fails with ErrAlreadyRunning when the driver is running. Stop is
// idempotent, invalidates the host timer and clears the registry, so callbacks
// registered before a Stop never fire after a later Start.
package pump
