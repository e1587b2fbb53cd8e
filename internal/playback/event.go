package playback

import (
	"slices"

	"github.com/roach88/storyreel/internal/stage"
)

// EventName identifies a state change.
type EventName string

const (
	EventOpen               EventName = "open"
	EventIntroStep          EventName = "intro_step"
	EventLoadingComplete    EventName = "loading_complete"
	EventTransitionComplete EventName = "transition_complete"
	EventAdvance            EventName = "advance"
	EventRetreat            EventName = "retreat"
	EventPause              EventName = "pause"
	EventResume             EventName = "resume"
	EventRestart            EventName = "restart"
	EventFinaleStep         EventName = "finale_step"
	EventOneMoreThing       EventName = "one_more_thing"
	EventHint               EventName = "hint"
	EventTrack              EventName = "track"
)

var eventNames = []EventName{
	EventOpen, EventIntroStep, EventLoadingComplete, EventTransitionComplete,
	EventAdvance, EventRetreat, EventPause, EventResume, EventRestart,
	EventFinaleStep, EventOneMoreThing, EventHint, EventTrack,
}

// KnownEvent reports whether name is an event the controller emits.
func KnownEvent(name string) bool {
	return slices.Contains(eventNames, EventName(name))
}

// State is the canonical playback state.
type State struct {
	Phase      stage.Phase `json:"phase" yaml:"phase"`
	SlideIndex int         `json:"slide_index" yaml:"slide_index"`
	Paused     bool        `json:"paused" yaml:"paused"`
	Epoch      uint64      `json:"epoch" yaml:"epoch"`
}

// Snapshot is the render state handed to presentation layers.
type Snapshot struct {
	State

	// Fraction is the elapsed share of the current slide, in [0, 1].
	Fraction float64 `json:"fraction"`

	Intro        stage.IntroStep  `json:"intro"`
	Finale       stage.FinaleStep `json:"finale"`
	Zooming      bool             `json:"zooming,omitempty"`
	OneMoreThing bool             `json:"one_more_thing,omitempty"`
	HintVisible  bool             `json:"hint_visible,omitempty"`

	// Track is the desired audio track path, "" for silence.
	Track string `json:"track,omitempty"`
	// NowPlaying is the display title of Track.
	NowPlaying string `json:"now_playing,omitempty"`
}

// Event is delivered to subscribers after every state change.
type Event struct {
	Name     EventName `json:"event"`
	Snapshot Snapshot  `json:"snapshot"`
}
