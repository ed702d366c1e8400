package runloop

import (
	"sync/atomic"
	"time"
)

// Timer is a repeating timer owned by a Loop.
type Timer struct {
	loop        *Loop
	period      time.Duration
	fn          func()
	next        time.Time
	invalidated atomic.Bool
}

// Invalidate implements pump.Timer.
func (t *Timer) Invalidate() {
	if t.invalidated.CompareAndSwap(false, true) {
		t.loop.wakeup()
	}
}

// Period returns the timer's minimum spacing.
func (t *Timer) Period() time.Duration {
	return t.period
}

// timerHeap is a min-heap of timers ordered by their next firing time.
type timerHeap []*Timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].next.Before(h[j].next) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*Timer))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
