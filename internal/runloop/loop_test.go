package runloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/heartbeat/internal/pump"
	"github.com/specialistvlad/heartbeat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ pump.Host = (*Loop)(nil)

// startLoop runs a fresh loop in the background and shuts it down at cleanup.
func startLoop(t *testing.T) *Loop {
	t.Helper()
	ctx, _ := testutil.LogContext(t)
	l := New(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	ready := make(chan struct{})
	require.NoError(t, l.Submit(func() { close(ready) }))
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not start")
	}

	t.Cleanup(func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, l.Shutdown(sctx))
		require.NoError(t, <-errCh)
	})
	return l
}

func TestSubmit_RunsOnHostThread(t *testing.T) {
	l := startLoop(t)

	result := make(chan bool, 1)
	require.NoError(t, l.Submit(func() { result <- l.IsHostThread() }))

	assert.True(t, <-result)
	assert.False(t, l.IsHostThread(), "the test goroutine is not the host thread")
}

func TestSubmit_PreservesOrder(t *testing.T) {
	l := startLoop(t)

	var seq []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Submit(func() { seq = append(seq, i) }))
	}
	require.NoError(t, l.Submit(func() { close(done) }))
	<-done

	assert.Equal(t, []int{0, 1, 2, 3, 4}, seq)
}

func TestSubmit_PanicIsRecovered(t *testing.T) {
	l := startLoop(t)

	require.NoError(t, l.Submit(func() { panic("boom") }))
	done := make(chan struct{})
	require.NoError(t, l.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop stopped after a panicking task")
	}
}

func TestScheduleRepeating_FiresUntilInvalidated(t *testing.T) {
	l := startLoop(t)

	var fired atomic.Int32
	var onHost atomic.Bool
	onHost.Store(true)
	timer, err := l.ScheduleRepeating(time.Millisecond, func() {
		fired.Add(1)
		if !l.IsHostThread() {
			onHost.Store(false)
		}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return fired.Load() >= 3 }, 5*time.Second, time.Millisecond)
	assert.True(t, onHost.Load(), "timer callbacks must run on the host thread")

	// Invalidate on the host thread so no firing can be in flight afterwards.
	stopped := make(chan struct{})
	require.NoError(t, l.Submit(func() {
		timer.Invalidate()
		close(stopped)
	}))
	<-stopped
	after := fired.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, fired.Load())
}

func TestScheduleRepeating_RejectsBadPeriod(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	l := New(ctx)

	_, err := l.ScheduleRepeating(0, func() {})
	assert.Error(t, err)
}

func TestRun_Twice(t *testing.T) {
	l := startLoop(t)
	assert.ErrorIs(t, l.Run(context.Background()), ErrLoopAlreadyRunning)
}

func TestRun_Reentrant(t *testing.T) {
	l := startLoop(t)

	errCh := make(chan error, 1)
	require.NoError(t, l.Submit(func() { errCh <- l.Run(context.Background()) }))
	assert.ErrorIs(t, <-errCh, ErrReentrantRun)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	ctx, cancel := context.WithCancel(ctx)
	l := New(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop ignored context cancellation")
	}
	<-l.Done()
	assert.ErrorIs(t, l.Submit(func() {}), ErrLoopTerminated)
}

func TestShutdown_IdleLoop(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	l := New(ctx)

	require.NoError(t, l.Shutdown(ctx))
	require.NoError(t, l.Shutdown(ctx))

	assert.ErrorIs(t, l.Run(ctx), ErrLoopTerminated)
	assert.ErrorIs(t, l.Submit(func() {}), ErrLoopTerminated)
	_, err := l.ScheduleRepeating(time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrLoopTerminated)
}

func TestPump_OnRunLoop(t *testing.T) {
	l := startLoop(t)
	ctx, _ := testutil.LogContext(t)

	d := pump.New(ctx, l, pump.Config{Period: time.Millisecond, Yield: time.Millisecond})
	rec := &testutil.Recorder{}
	d.Add("A", "append", rec.Append("A"))
	require.NoError(t, d.Start(ctx))

	require.Eventually(t, func() bool { return len(rec.Seq()) >= 2 }, 5*time.Second, time.Millisecond)

	stopped := make(chan struct{})
	require.NoError(t, l.Submit(func() {
		d.Stop(ctx)
		close(stopped)
	}))
	<-stopped
	n := len(rec.Seq())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.Seq(), n, "no tick may run after Stop")
	assert.Zero(t, d.Stats().WrongThread)
}
