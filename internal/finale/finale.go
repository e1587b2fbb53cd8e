// Package finale runs the reveal sequence that follows the proposal being
// accepted on the last slide.
//
// The sequence is linear and timer-driven:
//
//	idle -(zoom 600ms)-> accepted_phase1 -(2.5s)-> accepted_phase2
//	     -(2.5s)-> gift_intro -(2.5s)-> gift_reveal -(2.5s)-> link visible
//
// Once the "one more thing" link is visible the viewer may enter the
// epilogue. Nothing moves backwards; the only way out is Abort, which the
// playback controller calls on restart.
package finale

import (
	"errors"
	"time"

	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/stage"
)

const (
	// ZoomDelay is the pause between acceptance and the first reveal while
	// the scene zooms in.
	ZoomDelay = 600 * time.Millisecond
	// Cadence is the delay between consecutive reveal steps.
	Cadence = 2500 * time.Millisecond
)

var (
	// ErrStarted is returned by Start when the sequence already ran.
	ErrStarted = errors.New("finale already started")
	// ErrLinkHidden is returned by EnterEpilogue before the link is visible.
	ErrLinkHidden = errors.New("epilogue link not visible yet")
	// ErrAborted is returned by every operation after Abort.
	ErrAborted = errors.New("finale aborted")
)

// Change is delivered on every visible change of the sequence.
type Change struct {
	Step         stage.FinaleStep
	Zooming      bool
	OneMoreThing bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithZoomDelay overrides ZoomDelay.
func WithZoomDelay(d time.Duration) Option {
	return func(m *Machine) { m.zoomDelay = d }
}

// WithCadence overrides Cadence.
func WithCadence(d time.Duration) Option {
	return func(m *Machine) { m.cadence = d }
}

// Machine is one run of the finale. A restart discards it and builds a new
// one.
//
// Not safe for concurrent use.
type Machine struct {
	timers    *clock.Group
	onChange  func(Change)
	zoomDelay time.Duration
	cadence   time.Duration

	step         stage.FinaleStep
	zooming      bool
	oneMoreThing bool
	started      bool
	aborted      bool

	// gen invalidates callbacks scheduled before an Abort.
	gen uint64
}

// New returns an idle machine. onChange may be nil.
func New(c clock.Clock, onChange func(Change), opts ...Option) *Machine {
	m := &Machine{
		timers:    clock.NewGroup(c),
		onChange:  onChange,
		zoomDelay: ZoomDelay,
		cadence:   Cadence,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start accepts the proposal and begins the sequence.
func (m *Machine) Start() error {
	if m.aborted {
		return ErrAborted
	}
	if m.started {
		return ErrStarted
	}
	m.started = true
	m.zooming = true
	m.notify()

	m.schedule(m.zoomDelay, func() {
		m.zooming = false
		m.enter(stage.FinaleAccepted1)
	})
	return nil
}

func (m *Machine) enter(step stage.FinaleStep) {
	m.step = step
	m.notify()

	switch step {
	case stage.FinaleAccepted1:
		m.schedule(m.cadence, func() { m.enter(stage.FinaleAccepted2) })
	case stage.FinaleAccepted2:
		m.schedule(m.cadence, func() { m.enter(stage.FinaleGiftIntro) })
	case stage.FinaleGiftIntro:
		m.schedule(m.cadence, func() { m.enter(stage.FinaleGiftReveal) })
	case stage.FinaleGiftReveal:
		m.schedule(m.cadence, func() {
			m.oneMoreThing = true
			m.notify()
		})
	case stage.FinaleIdle, stage.FinaleEpilogue:
	}
}

func (m *Machine) schedule(d time.Duration, f func()) {
	gen := m.gen
	m.timers.AfterFunc(d, func() {
		if gen != m.gen || m.aborted {
			return
		}
		f()
	})
}

func (m *Machine) notify() {
	if m.onChange != nil {
		m.onChange(m.Change())
	}
}

// EnterEpilogue follows the "one more thing" link.
func (m *Machine) EnterEpilogue() error {
	if m.aborted {
		return ErrAborted
	}
	if !m.oneMoreThing || m.step != stage.FinaleGiftReveal {
		return ErrLinkHidden
	}
	m.oneMoreThing = false
	m.step = stage.FinaleEpilogue
	m.notify()
	return nil
}

// Abort cancels every pending step. It returns the number of timers that
// were still pending.
func (m *Machine) Abort() int {
	m.aborted = true
	m.gen++
	return m.timers.StopAll()
}

// Change returns the current visible state.
func (m *Machine) Change() Change {
	return Change{Step: m.step, Zooming: m.zooming, OneMoreThing: m.oneMoreThing}
}

// Step returns the current sub-phase.
func (m *Machine) Step() stage.FinaleStep { return m.step }

// Started reports whether the proposal was accepted.
func (m *Machine) Started() bool { return m.started }

// Pending returns the number of scheduled steps.
func (m *Machine) Pending() int { return m.timers.Len() }
