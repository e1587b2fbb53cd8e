package harness

import (
	"time"

	"github.com/roach88/storyreel/internal/playback"
)

// TraceEvent is one controller event as recorded by the harness. The
// progress fraction is left out; it is derived from the clock and the
// golden files stay readable without it.
type TraceEvent struct {
	Seq          int    `json:"seq"`
	AtMS         int64  `json:"at_ms"`
	Event        string `json:"event"`
	Phase        string `json:"phase"`
	SlideIndex   int    `json:"slide_index"`
	Paused       bool   `json:"paused"`
	Epoch        uint64 `json:"epoch"`
	Finale       string `json:"finale"`
	Intro        string `json:"intro"`
	HintVisible  bool   `json:"hint_visible,omitempty"`
	OneMoreThing bool   `json:"one_more_thing,omitempty"`
	Zooming      bool   `json:"zooming,omitempty"`
	Track        string `json:"track,omitempty"`
}

func traceEvent(seq int, at time.Duration, name playback.EventName, s playback.Snapshot) TraceEvent {
	return TraceEvent{
		Seq:          seq,
		AtMS:         at.Milliseconds(),
		Event:        string(name),
		Phase:        s.Phase.String(),
		SlideIndex:   s.SlideIndex,
		Paused:       s.Paused,
		Epoch:        s.Epoch,
		Finale:       s.Finale.String(),
		Intro:        s.Intro.String(),
		HintVisible:  s.HintVisible,
		OneMoreThing: s.OneMoreThing,
		Zooming:      s.Zooming,
		Track:        s.Track,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every controller event in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last step. Its Event is empty.
	Final TraceEvent `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) record(at time.Duration, ev playback.Event) {
	r.Trace = append(r.Trace, traceEvent(len(r.Trace)+1, at, ev.Name, ev.Snapshot))
}
