// Package clock is the timer source for every timed component.
//
// Nothing in the playback core calls time.Now or time.AfterFunc directly.
// Components take a Clock so tests can drive time by hand and the engine can
// re-post timer callbacks onto its single-writer loop.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop cancels the timer. It reports false if the callback already ran
	// or the timer was already stopped.
	Stop() bool
}

// Clock schedules callbacks and reports the current time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scaled runs a base clock faster (factor > 1) or slower (factor < 1). Both
// Now and AfterFunc are scaled so elapsed fractions stay consistent.
type Scaled struct {
	base   Clock
	factor float64
	origin time.Time
}

// NewScaled wraps base. A non-positive factor is treated as 1.
func NewScaled(base Clock, factor float64) *Scaled {
	if factor <= 0 {
		factor = 1
	}
	return &Scaled{base: base, factor: factor, origin: base.Now()}
}

func (s *Scaled) Now() time.Time {
	elapsed := s.base.Now().Sub(s.origin)
	return s.origin.Add(time.Duration(float64(elapsed) * s.factor))
}

func (s *Scaled) AfterFunc(d time.Duration, f func()) Timer {
	return s.base.AfterFunc(time.Duration(float64(d)/s.factor), f)
}

// Group tracks timers so an owner can cancel all of them at once. It is the
// cancellation-handle registry behind "every timer is canceled on phase exit,
// index change and restart".
type Group struct {
	mu     sync.Mutex
	clock  Clock
	timers map[*groupTimer]struct{}
}

// NewGroup returns an empty group scheduling on c.
func NewGroup(c Clock) *Group {
	return &Group{clock: c, timers: make(map[*groupTimer]struct{})}
}

type groupTimer struct {
	g     *Group
	inner Timer
}

func (t *groupTimer) Stop() bool {
	t.g.forget(t)
	return t.inner.Stop()
}

// AfterFunc schedules f and registers the handle. The handle is dropped from
// the group once f runs or the timer is stopped.
func (g *Group) AfterFunc(d time.Duration, f func()) Timer {
	t := &groupTimer{g: g}
	g.mu.Lock()
	g.timers[t] = struct{}{}
	g.mu.Unlock()

	t.inner = g.clock.AfterFunc(d, func() {
		g.forget(t)
		f()
	})
	return t
}

// Now forwards to the underlying clock.
func (g *Group) Now() time.Time {
	return g.clock.Now()
}

// StopAll cancels every registered timer and returns how many were still
// pending.
func (g *Group) StopAll() int {
	g.mu.Lock()
	pending := make([]*groupTimer, 0, len(g.timers))
	for t := range g.timers {
		pending = append(pending, t)
	}
	g.timers = make(map[*groupTimer]struct{})
	g.mu.Unlock()

	stopped := 0
	for _, t := range pending {
		if t.inner != nil && t.inner.Stop() {
			stopped++
		}
	}
	return stopped
}

// Len returns the number of registered timers.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

func (g *Group) forget(t *groupTimer) {
	g.mu.Lock()
	delete(g.timers, t)
	g.mu.Unlock()
}
