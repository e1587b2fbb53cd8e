// Package stage defines the closed enumerations shared by every playback
// component: the coarse Phase, the finale sub-phase and the intro step.
//
// These are the only phase representations in the module. Consumers switch
// over them exhaustively; adding a value means touching every switch that
// panics or returns "unknown" on an unexpected value.
package stage

import "fmt"

// Phase is the coarse top-level stage of the experience.
type Phase int

const (
	// Loading shows the intro sequence. Initial phase of every epoch.
	Loading Phase = iota
	// Transitioning shows the cinematic transition into the story.
	Transitioning
	// Story shows the slides, including the finale slide.
	Story
	// Restarting is a pseudo-phase. It is observable only for the duration of
	// a restart notification; the controller always settles on Loading.
	Restarting
)

// String returns the lower-case phase name used in traces and journals.
func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Transitioning:
		return "transitioning"
	case Story:
		return "story"
	case Restarting:
		return "restarting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared phases.
func (p Phase) Valid() bool {
	return p >= Loading && p <= Restarting
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for p := Loading; p <= Restarting; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// FinaleStep is the sub-phase of the finale slide once the proposal is
// answered. The sequence is linear and one-directional.
type FinaleStep int

const (
	FinaleIdle FinaleStep = iota
	FinaleAccepted1
	FinaleAccepted2
	FinaleGiftIntro
	FinaleGiftReveal
	FinaleEpilogue
)

func (s FinaleStep) String() string {
	switch s {
	case FinaleIdle:
		return "idle"
	case FinaleAccepted1:
		return "accepted_phase1"
	case FinaleAccepted2:
		return "accepted_phase2"
	case FinaleGiftIntro:
		return "gift_intro"
	case FinaleGiftReveal:
		return "gift_reveal"
	case FinaleEpilogue:
		return "epilogue"
	default:
		return fmt.Sprintf("finale(%d)", int(s))
	}
}

// ParseFinaleStep is the inverse of FinaleStep.String.
func ParseFinaleStep(s string) (FinaleStep, error) {
	for f := FinaleIdle; f <= FinaleEpilogue; f++ {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown finale step %q", s)
}

// IntroStep is the position inside the loading-phase intro sequence.
type IntroStep int

const (
	// IntroLanding waits for the viewer to open the story.
	IntroLanding IntroStep = iota
	IntroAnalyzing
	IntroGenre
	IntroArtist
	// IntroUnwrap waits for the viewer to unwrap, which completes loading.
	IntroUnwrap
)

func (s IntroStep) String() string {
	switch s {
	case IntroLanding:
		return "landing"
	case IntroAnalyzing:
		return "analyzing"
	case IntroGenre:
		return "genre"
	case IntroArtist:
		return "artist"
	case IntroUnwrap:
		return "unwrap"
	default:
		return fmt.Sprintf("intro(%d)", int(s))
	}
}

// ParseIntroStep is the inverse of IntroStep.String.
func ParseIntroStep(s string) (IntroStep, error) {
	for i := IntroLanding; i <= IntroUnwrap; i++ {
		if i.String() == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown intro step %q", s)
}

// MarshalText encodes the phase by name so traces and scenario files stay
// readable.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s FinaleStep) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *FinaleStep) UnmarshalText(b []byte) error {
	v, err := ParseFinaleStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s IntroStep) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *IntroStep) UnmarshalText(b []byte) error {
	v, err := ParseIntroStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
