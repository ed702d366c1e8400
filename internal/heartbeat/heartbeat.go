// Package heartbeat is the single access point through which unrelated parts
// of the application enroll periodic work on the host thread.
//
// A Heartbeat lazily builds a pump.Driver on first use and starts it; Shutdown
// stops and releases the driver so that a later use builds a fresh one. The
// application owns its Heartbeat and passes it to whoever needs it. SetDefault
// and the package-level Start, Add and Stop exist only for the outermost wiring
// layer, where a process-wide accessor is unavoidable.
package heartbeat

import (
	"context"
	"sync"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/pump"
	"github.com/specialistvlad/heartbeat/internal/registry"
)

// Factory builds a new, stopped driver.
type Factory func(ctx context.Context) *pump.Driver

// NewFactory returns a Factory creating drivers for host with cfg and opts.
func NewFactory(host pump.Host, cfg pump.Config, opts ...pump.Option) Factory {
	return func(ctx context.Context) *pump.Driver {
		return pump.New(ctx, host, cfg, opts...)
	}
}

// Heartbeat owns at most one running driver at a time.
type Heartbeat struct {
	factory Factory

	mu     sync.Mutex
	driver *pump.Driver
}

// New creates a Heartbeat that builds drivers with factory.
func New(factory Factory) *Heartbeat {
	return &Heartbeat{factory: factory}
}

// EnsureStarted builds and starts the driver if none exists. It is a no-op
// otherwise.
func (h *Heartbeat) EnsureStarted(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.ensureLocked(ctx)
	return err
}

func (h *Heartbeat) ensureLocked(ctx context.Context) (*pump.Driver, error) {
	if h.driver != nil {
		return h.driver, nil
	}
	d := h.factory(ctx)
	if err := d.Start(ctx); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Heartbeat started.")
	h.driver = d
	return d, nil
}

// Add starts the heartbeat if needed and registers fn to run on every tick.
func (h *Heartbeat) Add(ctx context.Context, receiver any, operation string, fn registry.Func) (registry.Token, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d, err := h.ensureLocked(ctx)
	if err != nil {
		return "", err
	}
	return d.Add(receiver, operation, fn), nil
}

// Remove unregisters a callback. It reports false when nothing was removed,
// including when the heartbeat is not running.
func (h *Heartbeat) Remove(tok registry.Token) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.driver == nil {
		return false
	}
	return h.driver.Remove(tok)
}

// Shutdown stops and releases the driver. It is safe to call repeatedly.
func (h *Heartbeat) Shutdown(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.driver == nil {
		return
	}
	h.driver.Stop(ctx)
	h.driver = nil
	ctxlog.FromContext(ctx).Debug("Heartbeat shut down.")
}

// Running reports whether a driver is currently installed and running.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.driver != nil && h.driver.State() == pump.Running
}

// Stats returns the current driver's counters, or a stopped snapshot.
func (h *Heartbeat) Stats() pump.Stats {
	h.mu.Lock()
	d := h.driver
	h.mu.Unlock()
	if d == nil {
		return pump.Stats{State: pump.Stopped.String()}
	}
	return d.Stats()
}

// Tick drives the current driver once, if there is one.
func (h *Heartbeat) Tick() {
	h.mu.Lock()
	d := h.driver
	h.mu.Unlock()
	if d != nil {
		d.Tick()
	}
}
