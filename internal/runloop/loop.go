package runloop

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/pump"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("runloop: loop is already running")

	// ErrLoopTerminated is returned when operations are attempted on a terminated loop.
	ErrLoopTerminated = errors.New("runloop: loop has been terminated")

	// ErrReentrantRun is returned when Run is called from within the loop itself.
	ErrReentrantRun = errors.New("runloop: cannot call Run from within the loop")
)

type loopState int32

const (
	stateIdle loopState = iota
	stateRunning
	stateTerminated
)

// Loop is a single-goroutine run loop with repeating timers.
type Loop struct {
	logger *slog.Logger

	mu     sync.Mutex
	tasks  []func()
	timers timerHeap

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	state       atomic.Int32
	goroutineID atomic.Uint64
	iterations  atomic.Uint64
}

// New creates an idle loop. It logs through the logger carried by ctx.
func New(ctx context.Context) *Loop {
	return &Loop{
		logger: ctxlog.FromContext(ctx).With("component", "runloop"),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run processes tasks and timers on the calling goroutine until ctx is done
// or Shutdown is called.
func (l *Loop) Run(ctx context.Context) error {
	if l.IsHostThread() {
		return ErrReentrantRun
	}
	if !l.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		if loopState(l.state.Load()) == stateTerminated {
			return ErrLoopTerminated
		}
		return ErrLoopAlreadyRunning
	}
	defer close(l.done)
	defer l.state.Store(int32(stateTerminated))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.goroutineID.Store(getGoroutineID())
	defer l.goroutineID.Store(0)

	l.logger.Debug("Run loop started.")
	defer l.logger.Debug("Run loop finished.", "iterations", l.iterations.Load())

	idle := time.NewTimer(time.Hour)
	defer idle.Stop()

	for {
		l.iterations.Add(1)
		l.runTasks()
		wait := l.fireTimers(time.Now())

		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(wait)

		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case <-l.wake:
		case <-idle.C:
		}
	}
}

// Submit queues fn to run on the loop goroutine.
func (l *Loop) Submit(fn func()) error {
	if loopState(l.state.Load()) == stateTerminated {
		return ErrLoopTerminated
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.wakeup()
	return nil
}

// ScheduleRepeating implements pump.Host.
func (l *Loop) ScheduleRepeating(period time.Duration, fn func()) (pump.Timer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("runloop: timer period must be positive, got %s", period)
	}
	if loopState(l.state.Load()) == stateTerminated {
		return nil, ErrLoopTerminated
	}
	t := &Timer{loop: l, period: period, fn: fn, next: time.Now().Add(period)}
	l.mu.Lock()
	heap.Push(&l.timers, t)
	l.mu.Unlock()
	l.wakeup()
	return t, nil
}

// IsHostThread implements pump.Host. It reports whether the caller is the
// goroutine currently executing Run.
func (l *Loop) IsHostThread() bool {
	id := l.goroutineID.Load()
	if id == 0 {
		return false
	}
	return getGoroutineID() == id
}

// Shutdown stops the loop and waits for Run to return. It is idempotent.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.stopOnce.Do(func() {
		if l.state.CompareAndSwap(int32(stateIdle), int32(stateTerminated)) {
			close(l.done)
		}
		close(l.stop)
	})

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop has terminated.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) wakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// runTasks executes the tasks queued so far. Tasks submitted while they run
// are picked up on the next iteration.
func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		l.safeCall("task", task)
	}
}

// fireTimers runs every timer due at now and returns how long to wait for the
// next one.
func (l *Loop) fireTimers(now time.Time) time.Duration {
	const maxWait = time.Hour

	l.mu.Lock()
	var due []*Timer
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if next.invalidated.Load() {
			heap.Pop(&l.timers)
			continue
		}
		if next.next.After(now) {
			break
		}
		due = append(due, heap.Pop(&l.timers).(*Timer))
	}
	l.mu.Unlock()

	for _, t := range due {
		if t.invalidated.Load() {
			continue
		}
		l.safeCall("timer", t.fn)
		if t.invalidated.Load() {
			continue
		}
		t.next = time.Now().Add(t.period)
		l.mu.Lock()
		heap.Push(&l.timers, t)
		l.mu.Unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for l.timers.Len() > 0 && l.timers[0].invalidated.Load() {
		heap.Pop(&l.timers)
	}
	if l.timers.Len() == 0 {
		return maxWait
	}
	wait := time.Until(l.timers[0].next)
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (l *Loop) safeCall(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("Run loop recovered from panic.", "kind", kind, "panic", rec)
		}
	}()
	fn()
}

// getGoroutineID returns the current goroutine's ID.
// This uses runtime internals and is only used for the host-thread check.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Stack trace starts with "goroutine NNN ["
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
