package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/storyreel/internal/audio/audiotest"
	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/story"
	"github.com/roach88/storyreel/internal/testutil"
)

// Surface is the size of the virtual screen gesture steps are scaled to.
const Surface = 1000.0

// Harness runs one scenario against a controller on a manual clock.
type Harness struct {
	ctl    *playback.Controller
	clock  *testutil.ManualClock
	policy gesture.Policy
	sink   *audiotest.Recorder
	logger *slog.Logger
	start  time.Time
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh controller, a manual clock starting at the
// same instant and a recording audio sink, so traces are reproducible.
//
// Execution flow:
// 1. Load the deck (built-in unless the scenario names one)
// 2. Execute steps, recording every controller event
// 3. Evaluate assertions against the trace and final state
//
// Run returns an error only when the scenario cannot be set up; step and
// assertion failures are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	deck, err := loadDeck(scenario.Deck)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		clock:  testutil.NewManualClock(),
		sink:   &audiotest.Recorder{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	}
	h.start = h.clock.Now()
	h.ctl = playback.New(deck, h.clock,
		playback.WithLogger(h.logger),
		playback.WithSink(h.sink),
		playback.WithReprise(scenario.Reprise),
	)
	h.policy = h.newPolicy(scenario.Policy)

	result := NewResult()
	h.ctl.Subscribe(func(ev playback.Event) {
		result.record(h.elapsed(), ev)
		if ev.Name == playback.EventRestart {
			h.policy.Reset()
		}
	})

	for i, step := range scenario.Steps {
		if err := h.executeStep(step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
	}

	result.Final = traceEvent(0, h.elapsed(), "", h.ctl.Snapshot())

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadDeck(path string) (story.Deck, error) {
	if path == "" {
		return story.Default(), nil
	}
	deck, err := story.LoadDeck(path)
	if err != nil {
		return story.Deck{}, fmt.Errorf("failed to load deck: %w", err)
	}
	return deck, nil
}

func (h *Harness) newPolicy(name string) gesture.Policy {
	if name == PolicyTapZone {
		return gesture.NewTapZonePolicy(h.ctl, h.logger)
	}
	return gesture.NewPressPolicy(h.ctl, h.clock, gesture.WithPressLogger(h.logger))
}

func (h *Harness) elapsed() time.Duration {
	return h.clock.Now().Sub(h.start)
}

func (h *Harness) executeStep(step Step) error {
	switch {
	case step.Do != "":
		cmd, err := playback.ParseCommand(step.Do)
		if err != nil {
			return err
		}
		err = h.ctl.Do(cmd)
		if step.ExpectError {
			if !playback.IsStateError(err) {
				return fmt.Errorf("%s: expected a state error, got %v", cmd, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
	case step.Wait > 0:
		h.clock.Advance(time.Duration(step.Wait))
	case step.Gesture != nil:
		kind, err := gesture.ParseKind(step.Gesture.Kind)
		if err != nil {
			return err
		}
		h.policy.Handle(gesture.Event{
			Kind:   kind,
			X:      step.Gesture.X * Surface,
			Y:      step.Gesture.Y * Surface,
			Width:  Surface,
			Height: Surface,
			At:     h.clock.Now(),
		})
	}
	return nil
}
