package engine

import (
	"sync"
	"time"

	"github.com/roach88/storyreel/internal/clock"
)

// loopClock schedules on a base clock but runs callbacks on the loop.
type loopClock struct {
	base  clock.Clock
	queue *eventQueue
}

func newLoopClock(base clock.Clock, q *eventQueue) *loopClock {
	return &loopClock{base: base, queue: q}
}

func (c *loopClock) Now() time.Time { return c.base.Now() }

func (c *loopClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	t := &loopTimer{f: f}
	inner := c.base.AfterFunc(d, func() {
		c.queue.Enqueue(Event{Type: EventTypeTimer, fire: t.run})
	})
	t.mu.Lock()
	t.inner = inner
	t.mu.Unlock()
	return t
}

// loopTimer is stoppable until its callback actually runs on the loop, not
// just until the base timer fires.
type loopTimer struct {
	mu      sync.Mutex
	inner   clock.Timer
	f       func()
	stopped bool
	ran     bool
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.ran {
		return false
	}
	t.stopped = true
	if t.inner != nil {
		t.inner.Stop()
	}
	return true
}

func (t *loopTimer) run() {
	t.mu.Lock()
	if t.stopped || t.ran {
		t.mu.Unlock()
		return
	}
	t.ran = true
	t.mu.Unlock()

	t.f()
}
