// Package progress implements the per-slide countdown that drives both the
// progress bar and auto-advance.
//
// A Driver runs one countdown per slide instance. It fires its completion
// callback exactly once when the countdown elapses while running, never for
// an indefinite (finale) duration, and never after it has been restarted or
// canceled.
//
// Driver is not safe for concurrent use. It is owned by the playback
// controller and touched only from the engine's single-writer loop.
package progress

import (
	"time"

	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/timing"
)

// Driver is a pausable countdown with an exactly-once completion.
type Driver struct {
	clock clock.Clock

	duration time.Duration
	// elapsed accrued before the current running segment.
	elapsed   time.Duration
	startedAt time.Time

	active  bool // a slide instance is loaded
	running bool // time is accruing
	paused  bool
	done    bool // completion delivered

	// gen is bumped on every Start and Cancel. Timer callbacks carry the gen
	// they were scheduled under and are discarded when it no longer matches.
	gen   uint64
	timer clock.Timer

	onComplete func()
}

// New returns an idle driver.
func New(c clock.Clock) *Driver {
	return &Driver{clock: c}
}

// Start begins a fresh countdown of length d for a new slide instance,
// discarding whatever countdown was in flight. When paused is true the
// countdown is loaded but accrues nothing until Resume.
func (d *Driver) Start(duration time.Duration, paused bool, onComplete func()) {
	d.Cancel()

	d.gen++
	d.duration = duration
	d.elapsed = 0
	d.active = true
	d.done = false
	d.paused = paused
	d.onComplete = onComplete

	if !paused {
		d.run()
	}
}

func (d *Driver) run() {
	d.startedAt = d.clock.Now()
	d.running = true

	if timing.IsIndefinite(d.duration) {
		return
	}

	gen := d.gen
	d.timer = d.clock.AfterFunc(d.duration-d.elapsed, func() {
		d.fire(gen)
	})
}

func (d *Driver) fire(gen uint64) {
	if gen != d.gen || !d.running {
		return
	}
	d.timer = nil
	d.complete()
}

func (d *Driver) complete() {
	if !d.active || d.done {
		return
	}
	d.stopTimer()
	d.elapsed = d.duration
	d.running = false
	d.done = true

	if d.onComplete != nil {
		d.onComplete()
	}
}

// Pause freezes the countdown. Elapsed time is kept.
func (d *Driver) Pause() {
	if !d.active || d.done || d.paused {
		return
	}
	d.paused = true
	if d.running {
		d.elapsed = min(d.duration, d.elapsed+d.clock.Now().Sub(d.startedAt))
		d.running = false
		d.stopTimer()
	}
}

// Resume continues a paused countdown from where it stopped.
func (d *Driver) Resume() {
	if !d.active || d.done || !d.paused {
		return
	}
	d.paused = false
	d.run()
}

// Finish reports that the rendered bar reached its end. It completes the
// countdown through the same exactly-once path as the timer, and is ignored
// while paused, after completion, or for an indefinite duration.
func (d *Driver) Finish() {
	if !d.active || d.done || d.paused || timing.IsIndefinite(d.duration) {
		return
	}
	d.complete()
}

// Cancel discards the current countdown. No completion fires afterwards.
func (d *Driver) Cancel() {
	d.stopTimer()
	d.gen++
	d.active = false
	d.running = false
	d.onComplete = nil
}

func (d *Driver) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Elapsed returns the accrued countdown time, capped at the duration.
func (d *Driver) Elapsed() time.Duration {
	if !d.active {
		return 0
	}
	el := d.elapsed
	if d.running {
		el += d.clock.Now().Sub(d.startedAt)
	}
	if !timing.IsIndefinite(d.duration) {
		el = min(el, d.duration)
	}
	return el
}

// Fraction returns the elapsed share of the countdown in [0, 1]. An
// indefinite countdown always reports 0.
func (d *Driver) Fraction() float64 {
	if !d.active || d.duration <= 0 || timing.IsIndefinite(d.duration) {
		if d.active && d.done {
			return 1
		}
		return 0
	}
	return float64(d.Elapsed()) / float64(d.duration)
}

// Duration returns the length of the current countdown.
func (d *Driver) Duration() time.Duration { return d.duration }

// Paused reports whether the countdown is frozen.
func (d *Driver) Paused() bool { return d.active && d.paused }

// Done reports whether the completion already fired for this instance.
func (d *Driver) Done() bool { return d.active && d.done }

// Active reports whether a countdown is loaded.
func (d *Driver) Active() bool { return d.active }
