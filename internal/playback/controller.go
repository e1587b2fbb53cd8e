package playback

import (
	"log/slog"
	"time"

	"github.com/roach88/storyreel/internal/audio"
	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/finale"
	"github.com/roach88/storyreel/internal/intro"
	"github.com/roach88/storyreel/internal/progress"
	"github.com/roach88/storyreel/internal/stage"
	"github.com/roach88/storyreel/internal/story"
	"github.com/roach88/storyreel/internal/timing"
)

// Controller is the playback state machine.
type Controller struct {
	deck   story.Deck
	clock  clock.Clock
	logger *slog.Logger

	transitionDelay time.Duration
	hintDelay       time.Duration
	sink            audio.Sink
	selector        audio.Selector
	titler          Titler
	reprise         bool
	finaleOpts      []finale.Option
	mixerOpts       []audio.MixerOption

	state State

	// Per-epoch sub-components. Restart discards and rebuilds all of them.
	driver     *progress.Driver
	finale     *finale.Machine
	intro      *intro.Sequence
	mixer      *audio.Mixer
	timers     *clock.Group
	transition clock.Timer
	hint       clock.Timer

	hintVisible bool

	observers []func(Event)
}

// New returns a controller in the initial state {loading, 0, unpaused,
// epoch 0}. The opening track starts immediately.
func New(deck story.Deck, c clock.Clock, opts ...Option) *Controller {
	ctl := &Controller{
		deck:            deck,
		clock:           c,
		logger:          slog.Default(),
		transitionDelay: DefaultTransitionDelay,
		hintDelay:       DefaultHintDelay,
		sink:            audio.SinkFunc(func(audio.Intent) {}),
		selector:        audio.Selector{Root: audio.DefaultRoot},
	}
	for _, opt := range opts {
		opt(ctl)
	}

	ctl.build()
	ctl.syncAudio()
	return ctl
}

// build creates the sub-components for the current epoch.
func (c *Controller) build() {
	c.driver = progress.New(c.clock)
	c.finale = finale.New(c.clock, c.onFinale, c.finaleOpts...)
	c.intro = intro.New(c.clock, c.onIntro)
	mixerOpts := append([]audio.MixerOption{audio.WithMixerLogger(c.logger)}, c.mixerOpts...)
	c.mixer = audio.NewMixer(c.clock, c.sink, mixerOpts...)
	c.timers = clock.NewGroup(c.clock)
	c.transition = nil
	c.hint = nil
	c.hintVisible = false
}

// teardown cancels every timer of the current epoch and stops audio.
func (c *Controller) teardown() {
	c.driver.Cancel()
	c.finale.Abort()
	c.intro.Abort()
	c.timers.StopAll()
	c.mixer.Stop()
}

// Subscribe registers fn to receive every event. Observers run
// synchronously after the state change and must not call back into the
// controller.
func (c *Controller) Subscribe(fn func(Event)) {
	c.observers = append(c.observers, fn)
}

func (c *Controller) emit(name EventName) {
	if len(c.observers) == 0 {
		return
	}
	ev := Event{Name: name, Snapshot: c.Snapshot()}
	for _, fn := range c.observers {
		fn(ev)
	}
}

func (c *Controller) reject(op, reason string) error {
	err := &StateError{Op: op, Phase: c.state.Phase, Reason: reason}
	c.logger.Warn("state error", "op", op, "phase", c.state.Phase.String(), "reason", reason)
	return err
}

// State returns the canonical state.
func (c *Controller) State() State { return c.state }

// Deck returns the slides being played.
func (c *Controller) Deck() story.Deck { return c.deck }

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	track := c.mixer.Current()
	s := Snapshot{
		State:        c.state,
		Intro:        c.intro.Step(),
		HintVisible:  c.hintVisible,
		Track:        track,
		NowPlaying:   c.title(track),
		Finale:       c.finale.Step(),
		Zooming:      c.finale.Change().Zooming,
		OneMoreThing: c.finale.Change().OneMoreThing,
	}
	if c.state.Phase == stage.Story {
		s.Fraction = c.driver.Fraction()
	}
	return s
}

func (c *Controller) title(track string) string {
	if track == "" {
		return ""
	}
	if c.titler != nil {
		return c.titler.Title(track)
	}
	return audio.FallbackTitle(track)
}

// NavigationEnabled reports whether taps and holds apply: only on story
// slides, never on the finale slide.
func (c *Controller) NavigationEnabled() bool {
	return c.state.Phase == stage.Story && !c.currentSlide().IsFinale()
}

func (c *Controller) currentSlide() story.Slide {
	return c.deck.Slide(c.state.SlideIndex)
}

// Open leaves the landing screen and starts the intro sequence.
func (c *Controller) Open() error {
	if c.state.Phase != stage.Loading {
		return c.reject("open", "intro is only shown while loading")
	}
	if err := c.intro.Open(); err != nil {
		return c.reject("open", err.Error())
	}
	c.emit(EventOpen)
	return nil
}

func (c *Controller) onIntro(step stage.IntroStep) {
	if step == stage.IntroAnalyzing {
		// Open emits its own event for the first step.
		return
	}
	c.emit(EventIntroStep)
}

// CompleteLoading moves from loading to transitioning.
func (c *Controller) CompleteLoading() error {
	if c.state.Phase != stage.Loading {
		return c.reject("complete_loading", "")
	}
	c.intro.Abort()
	c.state.Phase = stage.Transitioning
	c.logger.Info("phase changed", "phase", c.state.Phase.String(), "epoch", c.state.Epoch)

	if c.transitionDelay > 0 {
		epoch := c.state.Epoch
		c.transition = c.timers.AfterFunc(c.transitionDelay, func() {
			c.transition = nil
			if epoch != c.state.Epoch || c.state.Phase != stage.Transitioning {
				return
			}
			if err := c.CompleteTransition(); err != nil {
				c.logger.Debug("transition auto-complete dropped", "error", err)
			}
		})
	}

	c.commit(EventLoadingComplete)
	return nil
}

// CompleteTransition moves from transitioning to story at slide 0.
func (c *Controller) CompleteTransition() error {
	if c.state.Phase != stage.Transitioning {
		return c.reject("complete_transition", "")
	}
	c.stop(&c.transition)

	c.state.Phase = stage.Story
	c.state.SlideIndex = 0
	c.logger.Info("phase changed", "phase", c.state.Phase.String(), "epoch", c.state.Epoch)

	c.enterSlide()
	c.commit(EventTransitionComplete)
	return nil
}

// Advance moves to the next slide. At the last slide it is a no-op; the
// finale takes over from there.
func (c *Controller) Advance() error {
	if err := c.checkNavigation("advance"); err != nil {
		return err
	}
	if c.state.SlideIndex >= c.deck.LastIndex() {
		return nil
	}
	c.state.SlideIndex++
	c.logger.Debug("slide advanced", "index", c.state.SlideIndex)

	c.enterSlide()
	c.commit(EventAdvance)
	return nil
}

// Retreat moves to the previous slide. At slide 0 it is a no-op.
func (c *Controller) Retreat() error {
	if err := c.checkNavigation("retreat"); err != nil {
		return err
	}
	if c.state.SlideIndex == 0 {
		return nil
	}
	c.state.SlideIndex--
	c.logger.Debug("slide retreated", "index", c.state.SlideIndex)

	c.enterSlide()
	c.commit(EventRetreat)
	return nil
}

func (c *Controller) checkNavigation(op string) error {
	if c.state.Phase != stage.Story {
		return c.reject(op, "")
	}
	if c.finale.Started() {
		return c.reject(op, "finale in progress")
	}
	return nil
}

// enterSlide restarts the countdown and hint for the current index. Timers
// of the previous slide are canceled first.
func (c *Controller) enterSlide() {
	c.clearHint()

	epoch, index := c.state.Epoch, c.state.SlideIndex
	c.driver.Start(timing.ComputeDuration(c.currentSlide()), c.state.Paused, func() {
		if epoch != c.state.Epoch || index != c.state.SlideIndex || c.state.Phase != stage.Story {
			return
		}
		if err := c.Advance(); err != nil {
			c.logger.Debug("auto-advance dropped", "error", err)
		}
	})
	c.armHint()
}

// Finish reports that the rendered progress bar reached its end. The
// driver delivers the advance at most once per slide.
func (c *Controller) Finish() error {
	if c.state.Phase != stage.Story {
		return c.reject("finish", "")
	}
	c.driver.Finish()
	return nil
}

// Pause freezes the current slide. Pausing twice is a no-op.
func (c *Controller) Pause() error {
	if c.state.Phase != stage.Story {
		return c.reject("pause", "")
	}
	if c.state.Paused {
		return nil
	}
	c.state.Paused = true
	c.driver.Pause()
	c.clearHint()
	c.emit(EventPause)
	return nil
}

// Resume continues the current slide from where it was paused.
func (c *Controller) Resume() error {
	if c.state.Phase != stage.Story {
		return c.reject("resume", "")
	}
	if !c.state.Paused {
		return nil
	}
	c.state.Paused = false
	c.driver.Resume()
	c.armHint()
	c.emit(EventResume)
	return nil
}

func (c *Controller) armHint() {
	if c.hintDelay <= 0 || c.state.Paused || c.state.Phase != stage.Story || c.currentSlide().IsFinale() {
		return
	}
	epoch, index := c.state.Epoch, c.state.SlideIndex
	c.hint = c.timers.AfterFunc(c.hintDelay, func() {
		c.hint = nil
		if epoch != c.state.Epoch || index != c.state.SlideIndex || c.state.Paused || c.state.Phase != stage.Story {
			return
		}
		c.hintVisible = true
		c.emit(EventHint)
	})
}

func (c *Controller) clearHint() {
	c.stop(&c.hint)
	c.hintVisible = false
}

func (c *Controller) stop(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// Accept answers the proposal on the finale slide and starts the reveal
// sequence.
func (c *Controller) Accept() error {
	if c.state.Phase != stage.Story {
		return c.reject("accept", "")
	}
	if !c.currentSlide().IsFinale() {
		return c.reject("accept", "not on the finale slide")
	}
	if err := c.finale.Start(); err != nil {
		return c.reject("accept", err.Error())
	}
	c.clearHint()
	c.logger.Info("finale started", "epoch", c.state.Epoch)
	return nil
}

// EnterEpilogue follows the "one more thing" link.
func (c *Controller) EnterEpilogue() error {
	if c.state.Phase != stage.Story {
		return c.reject("enter_epilogue", "")
	}
	if err := c.finale.EnterEpilogue(); err != nil {
		return c.reject("enter_epilogue", err.Error())
	}
	return nil
}

func (c *Controller) onFinale(ch finale.Change) {
	if ch.OneMoreThing {
		c.emit(EventOneMoreThing)
		return
	}
	c.commit(EventFinaleStep)
}

// Restart discards the whole session and returns to the initial state of
// a new epoch. Valid from any phase.
func (c *Controller) Restart() error {
	c.teardown()

	c.state = State{Phase: stage.Restarting, Epoch: c.state.Epoch + 1}
	c.build()
	c.logger.Info("restarting", "epoch", c.state.Epoch)
	c.emit(EventRestart)

	c.state.Phase = stage.Loading
	c.syncAudio()
	return nil
}

// Interact reports a user interaction so a blocked track can retry.
func (c *Controller) Interact() {
	c.mixer.Interact()
}

// PlayFailed is reported by the audio output when a track did not start.
// Asset errors are returned for the output to log; they never change the
// playback state.
func (c *Controller) PlayFailed(track string, err error) error {
	return c.mixer.PlayFailed(track, err)
}

// commit brings audio in line with the new state, then emits name. A
// track change is announced right after it.
func (c *Controller) commit(name EventName) {
	changed := c.updateAudio()
	c.emit(name)
	if changed {
		c.emit(EventTrack)
	}
}

func (c *Controller) syncAudio() {
	if c.updateAudio() {
		c.emit(EventTrack)
	}
}

func (c *Controller) updateAudio() bool {
	track := c.selector.Select(audio.Selection{
		Phase:      c.state.Phase,
		SlideIndex: c.state.SlideIndex,
		Finale:     c.finale.Step(),
		Reprise:    c.reprise,
	}, c.deck)
	return c.mixer.Update(track)
}
