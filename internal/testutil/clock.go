package testutil

import (
	"sync"
	"time"

	"github.com/roach88/storyreel/internal/clock"
)

// Epoch is the fixed start time of every ManualClock created with
// NewManualClock. Golden traces depend on it staying constant.
var Epoch = time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

// ManualClock is a clock.Clock whose time only moves when a test calls
// Advance. Due callbacks run synchronously inside Advance, in deadline order
// (ties broken by scheduling order), which makes timer-heavy code fully
// deterministic.
//
// Callbacks may schedule or stop other timers; a timer scheduled inside a
// callback fires in the same Advance if its deadline is within range.
//
// Thread-safety: all methods are safe for concurrent use, but callbacks are
// invoked on the goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int64
	timers []*manualTimer
}

type manualTimer struct {
	c       *ManualClock
	at      time.Time
	seq     int64
	f       func()
	done    bool // fired or stopped
	stopped bool
}

// NewManualClock creates a clock starting at Epoch.
func NewManualClock() *ManualClock {
	return NewManualClockAt(Epoch)
}

// NewManualClockAt creates a clock starting at start.
func NewManualClockAt(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at Now()+d. Non-positive durations fire on the next
// Advance, including Advance(0).
func (c *ManualClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.seq++
	t := &manualTimer{c: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements clock.Timer.
func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.stopped = true
	return true
}

// Advance moves time forward by d, firing every timer that comes due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.compactLocked()
			c.mu.Unlock()
			return
		}
		next.done = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// NextDeadline returns the time until the earliest pending timer and whether
// one exists.
func (c *ManualClock) NextDeadline() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var best *manualTimer
	for _, t := range c.timers {
		if t.done {
			continue
		}
		if best == nil || t.at.Before(best.at) {
			best = t
		}
	}
	if best == nil {
		return 0, false
	}
	return best.at.Sub(c.now), true
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range c.timers {
		if t.done || t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *ManualClock) compactLocked() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = live
}
