package pump

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/registry"
)

// State is the lifecycle state of a Driver.
type State int32

const (
	Stopped State = iota
	Running
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats is a point-in-time view of the driver's counters.
type Stats struct {
	State       string    `json:"state"`
	Registered  int       `json:"registered"`
	Ticks       uint64    `json:"ticks"`
	Invocations uint64    `json:"invocations"`
	Failures    uint64    `json:"failures"`
	WrongThread uint64    `json:"wrong_thread"`
	LastTick    time.Time `json:"last_tick,omitzero"`
}

// Option customizes a Driver.
type Option func(*Driver)

// WithSink installs a diagnostic sink.
func WithSink(s Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithSleep replaces the function used to yield the host thread. Tests use it
// to observe the yield without actually blocking.
func WithSleep(fn func(time.Duration)) Option {
	return func(d *Driver) { d.sleep = fn }
}

// WithRegistry makes the driver drain an existing registry.
func WithRegistry(r *registry.Registry) Option {
	return func(d *Driver) { d.reg = r }
}

// Driver attaches a registry to a host run loop.
type Driver struct {
	host   Host
	cfg    Config
	sink   Sink
	sleep  func(time.Duration)
	reg    *registry.Registry
	ctx    context.Context
	logger *slog.Logger

	mu    sync.Mutex
	state State
	timer Timer

	ticks       atomic.Uint64
	invocations atomic.Uint64
	failures    atomic.Uint64
	wrongThread atomic.Uint64
	lastTick    atomic.Int64
}

// New creates a stopped driver for host. The logger in ctx is used for every
// tick, since ticks are delivered by the host without a context of their own.
func New(ctx context.Context, host Host, cfg Config, opts ...Option) *Driver {
	d := &Driver{
		host:  host,
		cfg:   cfg,
		sleep: time.Sleep,
		ctx:   ctxlog.With(ctx, "component", "pump"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reg == nil {
		d.reg = registry.New()
	}
	d.logger = ctxlog.FromContext(d.ctx)
	return d
}

// Start schedules the repeating tick timer with the host.
func (d *Driver) Start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Running {
		return ErrAlreadyRunning
	}
	if err := d.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pump config: %w", err)
	}

	timer, err := d.host.ScheduleRepeating(d.cfg.Period, d.Tick)
	if err != nil {
		return fmt.Errorf("failed to schedule tick timer: %w", err)
	}
	d.timer = timer
	d.state = Running
	logger.Debug("Pump started.", "period", d.cfg.Period, "yield", d.cfg.Yield)
	return nil
}

// Stop invalidates the tick timer and clears the registry. Stopping a stopped
// driver does nothing.
func (d *Driver) Stop(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Stopped {
		logger.Debug("Pump already stopped.")
		return
	}
	if d.timer != nil {
		d.timer.Invalidate()
		d.timer = nil
	}
	d.state = Stopped
	dropped := d.reg.Len()
	d.reg.Clear()
	logger.Debug("Pump stopped.", "dropped_callbacks", dropped)
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Add registers a callback that runs on every tick until removed or until
// the driver stops.
func (d *Driver) Add(receiver any, operation string, fn registry.Func) registry.Token {
	return d.reg.Register(receiver, operation, fn)
}

// Remove unregisters a callback.
func (d *Driver) Remove(tok registry.Token) bool {
	return d.reg.Remove(tok)
}

// Tick is the timer handler. It is exported so hosts that deliver timers
// themselves, and tests, can drive the pump directly.
func (d *Driver) Tick() {
	if d.State() != Running {
		return
	}
	tick := d.ticks.Add(1)
	now := time.Now()
	d.lastTick.Store(now.UnixNano())

	if !d.host.IsHostThread() {
		d.wrongThread.Add(1)
		d.logger.Error("Tick delivered off the host thread, skipping.", "tick", tick)
		d.report(Diagnostic{Tick: tick, At: now, Operation: "tick", Err: ErrWrongThread})
		return
	}

	if d.cfg.Yield > 0 {
		d.sleep(d.cfg.Yield)
	}

	results := d.reg.Drain()
	d.invocations.Add(uint64(len(results)))
	for _, res := range results {
		if !res.Failed() {
			continue
		}
		d.failures.Add(1)
		d.logger.Warn("Pump callback failed.", "tick", tick, "operation", res.Operation, "error", res.Err)
		d.report(Diagnostic{
			Tick:      tick,
			At:        now,
			Token:     res.Token,
			Receiver:  res.Receiver,
			Operation: res.Operation,
			Err:       res.Err,
		})
	}
}

// report forwards a diagnostic to the sink. A panicking sink is contained so
// that it cannot take the host loop down with it.
func (d *Driver) report(diag Diagnostic) {
	if d.sink == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("Diagnostic sink panicked.", "panic", rec)
		}
	}()
	d.sink.Report(diag)
}

// Stats returns the driver's counters.
func (d *Driver) Stats() Stats {
	s := Stats{
		State:       d.State().String(),
		Registered:  d.reg.Len(),
		Ticks:       d.ticks.Load(),
		Invocations: d.invocations.Load(),
		Failures:    d.failures.Load(),
		WrongThread: d.wrongThread.Load(),
	}
	if ns := d.lastTick.Load(); ns != 0 {
		s.LastTick = time.Unix(0, ns)
	}
	return s
}
