package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/stage"
)

// Scenario is a scripted playback session with assertions on the resulting
// trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Deck is an optional deck file. Relative paths are resolved against the
	// scenario file. Empty means the built-in deck.
	Deck string `yaml:"deck,omitempty"`

	// Policy selects the gesture policy: "press" (default) or "tap_zone".
	Policy string `yaml:"policy,omitempty"`

	// Reprise makes the epilogue return to the opening track.
	Reprise bool `yaml:"reprise,omitempty"`

	// Steps run in order against a manual clock.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is exactly one of a command, a wait or a gesture.
type Step struct {
	// Do is a playback command name (e.g. "advance").
	Do string `yaml:"do,omitempty"`

	// ExpectError marks a command that must be rejected.
	ExpectError bool `yaml:"expect_error,omitempty"`

	// Wait advances the clock, firing due timers.
	Wait Duration `yaml:"wait,omitempty"`

	// Gesture feeds one pointer event to the gesture policy.
	Gesture *GestureStep `yaml:"gesture,omitempty"`
}

// GestureStep is a pointer event. X and Y are fractions of the surface.
type GestureStep struct {
	Kind string  `yaml:"kind"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Duration accepts Go duration strings ("6.5s", "200ms") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event appears, optionally with a matching state
	// - "trace_order": events appear in order
	// - "trace_count": an event appears exactly N times
	// - "no_event_after": an event never appears after another one
	// - "final_state": the state after the last step
	Type string `yaml:"type"`

	// Event is the event name (trace_contains, trace_count, no_event_after).
	Event string `yaml:"event,omitempty"`

	// State is a subset match on the event (trace_contains) or on the final
	// state (final_state).
	State *StateExpect `yaml:"state,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected order (trace_order).
	Events []string `yaml:"events,omitempty"`

	// After is the event that Event must not follow (no_event_after).
	After string `yaml:"after,omitempty"`
}

// StateExpect lists the fields to compare. Nil fields are not checked.
type StateExpect struct {
	Phase        *string `yaml:"phase,omitempty"`
	SlideIndex   *int    `yaml:"slide_index,omitempty"`
	Paused       *bool   `yaml:"paused,omitempty"`
	Epoch        *uint64 `yaml:"epoch,omitempty"`
	Finale       *string `yaml:"finale,omitempty"`
	Intro        *string `yaml:"intro,omitempty"`
	HintVisible  *bool   `yaml:"hint_visible,omitempty"`
	OneMoreThing *bool   `yaml:"one_more_thing,omitempty"`
	Track        *string `yaml:"track,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertNoEventAfter  = "no_event_after"
	AssertFinalState    = "final_state"
)

// Policy names.
const (
	PolicyPress   = "press"
	PolicyTapZone = "tap_zone"
)

// LoadScenario reads and parses a scenario YAML file. A relative deck path
// is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Deck != "" && !filepath.IsAbs(s.Deck) {
		s.Deck = filepath.Join(filepath.Dir(path), s.Deck)
	}
	if s.Deck != "" {
		if _, err := os.Stat(s.Deck); err != nil {
			return nil, fmt.Errorf("invalid scenario: deck file not found: %s", s.Deck)
		}
	}
	return s, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch s.Policy {
	case "", PolicyPress, PolicyTapZone:
	default:
		return fmt.Errorf("unknown policy %q", s.Policy)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Do != "" {
		set++
		if _, err := playback.ParseCommand(step.Do); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	if step.Wait != 0 {
		set++
		if step.Wait < 0 {
			return fmt.Errorf("steps[%d]: wait must be positive", index)
		}
	}
	if step.Gesture != nil {
		set++
		if _, err := gesture.ParseKind(step.Gesture.Kind); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		if step.Gesture.X < 0 || step.Gesture.X > 1 || step.Gesture.Y < 0 || step.Gesture.Y > 1 {
			return fmt.Errorf("steps[%d]: gesture coordinates must be in [0, 1]", index)
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of do, wait or gesture is required", index)
	}
	if step.ExpectError && step.Do == "" {
		return fmt.Errorf("steps[%d]: expect_error only applies to do", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if err := checkEvent(index, a.Type, a.Event); err != nil {
			return err
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for _, name := range a.Events {
			if err := checkEvent(index, a.Type, name); err != nil {
				return err
			}
		}
	case AssertTraceCount:
		if err := checkEvent(index, a.Type, a.Event); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertNoEventAfter:
		if err := checkEvent(index, a.Type, a.Event); err != nil {
			return err
		}
		if err := checkEvent(index, a.Type, a.After); err != nil {
			return err
		}
	case AssertFinalState:
		if a.State == nil {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.State != nil {
		if err := a.State.validate(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}
	return nil
}

func checkEvent(index int, typ, name string) error {
	if name == "" {
		return fmt.Errorf("assertions[%d]: event is required for %s", index, typ)
	}
	if !playback.KnownEvent(name) {
		return fmt.Errorf("assertions[%d]: unknown event %q", index, name)
	}
	return nil
}

func (e *StateExpect) validate() error {
	if e.Phase != nil {
		if _, err := stage.ParsePhase(*e.Phase); err != nil {
			return err
		}
	}
	if e.Finale != nil {
		if _, err := stage.ParseFinaleStep(*e.Finale); err != nil {
			return err
		}
	}
	if e.Intro != nil {
		if _, err := stage.ParseIntroStep(*e.Intro); err != nil {
			return err
		}
	}
	return nil
}
