package gesture

import (
	"log/slog"
	"time"

	"github.com/roach88/storyreel/internal/clock"
)

// PressOption configures a PressPolicy.
type PressOption func(*PressPolicy)

// WithHoldThreshold overrides HoldThreshold.
func WithHoldThreshold(d time.Duration) PressOption {
	return func(p *PressPolicy) { p.threshold = d }
}

// WithPressLogger sets the logger.
func WithPressLogger(l *slog.Logger) PressOption {
	return func(p *PressPolicy) { p.logger = l }
}

// PressPolicy classifies presses by duration. The pause starts when the hold
// timer fires, not on release, so a held press freezes the slide
// immediately.
type PressPolicy struct {
	nav       Navigator
	clock     clock.Clock
	logger    *slog.Logger
	threshold time.Duration

	pressing bool
	held     bool
	start    time.Time
	timer    clock.Timer
	// press counts presses; a hold timer only acts on its own press.
	press uint64
}

// NewPressPolicy returns a press-duration policy driving nav.
func NewPressPolicy(nav Navigator, c clock.Clock, opts ...PressOption) *PressPolicy {
	p := &PressPolicy{
		nav:       nav,
		clock:     c,
		logger:    slog.Default(),
		threshold: HoldThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle implements Policy.
func (p *PressPolicy) Handle(ev Event) {
	switch ev.Kind {
	case Down:
		p.down(ev)
	case Up:
		p.release(ev, true)
	case Leave:
		p.release(ev, false)
	case Click:
		// Taps are derived from down/up pairs.
	}
}

func (p *PressPolicy) down(ev Event) {
	p.nav.Interact()
	// A down without a matching up ends the previous press first.
	p.release(ev, false)
	if !p.nav.NavigationEnabled() {
		return
	}

	p.press++
	p.pressing = true
	p.start = ev.At

	press := p.press
	p.timer = p.clock.AfterFunc(p.threshold, func() {
		if press != p.press || !p.pressing {
			return
		}
		p.timer = nil
		p.held = true
		if err := p.nav.Pause(); err != nil {
			p.logger.Debug("hold ignored", "error", err)
		}
	})
}

func (p *PressPolicy) release(ev Event, canTap bool) {
	if !p.pressing {
		return
	}
	held := p.held
	short := ev.At.Sub(p.start) < p.threshold
	p.Reset()

	switch {
	case held:
		if err := p.nav.Resume(); err != nil {
			p.logger.Debug("release ignored", "error", err)
		}
	case canTap && short:
		tap(p.nav, ev, p.logger)
	}
}

// Reset implements Policy.
func (p *PressPolicy) Reset() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pressing = false
	p.held = false
}

// Holding reports whether a press is currently paused by a hold.
func (p *PressPolicy) Holding() bool { return p.held }
