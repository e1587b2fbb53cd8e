// Package gesture turns raw pointer events into playback commands.
//
// Two policies exist. PressPolicy is the default: a press shorter than the
// hold threshold is a navigation tap, a longer press pauses for as long as
// it is held. TapZonePolicy is the simpler alternative that only looks at
// clicks in the top band of the screen.
//
// All press state lives in the policy value. Nothing is global, so a policy
// can be driven from a test with a fake Navigator and a manual clock.
package gesture

import (
	"fmt"
	"log/slog"
	"time"
)

// Kind is the type of pointer event.
type Kind int

const (
	Down Kind = iota + 1
	Up
	Leave
	Click
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Up:
		return "up"
	case Leave:
		return "leave"
	case Click:
		return "click"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := Down; k <= Click; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown gesture kind %q", s)
}

// Event is one pointer event in screen coordinates. Width and Height are the
// size of the surface the event was captured on.
type Event struct {
	Kind   Kind
	X, Y   float64
	Width  float64
	Height float64
	At     time.Time
}

const (
	// HoldThreshold separates a tap from a hold.
	HoldThreshold = 200 * time.Millisecond
	// RetreatZone is the share of the width, from the left edge, that
	// navigates backwards.
	RetreatZone = 0.3
	// NavBand is the share of the height, from the top, that accepts taps in
	// the tap-zone policy.
	NavBand = 0.6
)

// Navigator receives the commands a policy derives. The playback controller
// implements it.
type Navigator interface {
	Advance() error
	Retreat() error
	Pause() error
	Resume() error
	// Interact is called on every press so blocked audio can retry.
	Interact()
	// NavigationEnabled reports whether taps and holds apply right now.
	NavigationEnabled() bool
}

// Policy consumes pointer events.
type Policy interface {
	Handle(Event)
	// Reset drops any in-progress press without emitting commands.
	Reset()
}

// Retreats reports whether a tap at x on a surface of the given width
// navigates backwards.
func Retreats(x, width float64) bool {
	if width <= 0 {
		return false
	}
	return x < width*RetreatZone
}

func tap(nav Navigator, ev Event, logger *slog.Logger) {
	var err error
	if Retreats(ev.X, ev.Width) {
		err = nav.Retreat()
	} else {
		err = nav.Advance()
	}
	if err != nil {
		logger.Debug("tap ignored", "error", err)
	}
}
