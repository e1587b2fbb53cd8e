// Package intro sequences the loading-phase screens shown before the story:
// a landing screen, three timed "analysis" screens and the unwrap prompt.
package intro

import (
	"errors"
	"time"

	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/stage"
)

// Step delays, measured from entering the step.
const (
	AnalyzingDelay = 4 * time.Second
	GenreDelay     = 4 * time.Second
	ArtistDelay    = 5 * time.Second
)

// ErrOpened is returned by Open when the sequence is already running.
var ErrOpened = errors.New("intro already opened")

// Sequence walks landing -> analyzing -> genre -> artist -> unwrap. The last
// step waits for the viewer; the playback controller ends the sequence when
// loading completes.
type Sequence struct {
	timers *clock.Group
	onStep func(stage.IntroStep)

	step    stage.IntroStep
	opened  bool
	aborted bool
	gen     uint64
}

// New returns a sequence on the landing step. onStep may be nil.
func New(c clock.Clock, onStep func(stage.IntroStep)) *Sequence {
	return &Sequence{timers: clock.NewGroup(c), onStep: onStep}
}

// Open leaves the landing screen and starts the timed steps.
func (s *Sequence) Open() error {
	if s.opened || s.aborted {
		return ErrOpened
	}
	s.opened = true
	s.enter(stage.IntroAnalyzing)
	return nil
}

func (s *Sequence) enter(step stage.IntroStep) {
	s.step = step
	if s.onStep != nil {
		s.onStep(step)
	}

	switch step {
	case stage.IntroAnalyzing:
		s.schedule(AnalyzingDelay, stage.IntroGenre)
	case stage.IntroGenre:
		s.schedule(GenreDelay, stage.IntroArtist)
	case stage.IntroArtist:
		s.schedule(ArtistDelay, stage.IntroUnwrap)
	case stage.IntroLanding, stage.IntroUnwrap:
	}
}

func (s *Sequence) schedule(d time.Duration, next stage.IntroStep) {
	gen := s.gen
	s.timers.AfterFunc(d, func() {
		if gen != s.gen || s.aborted {
			return
		}
		s.enter(next)
	})
}

// Abort cancels any pending step.
func (s *Sequence) Abort() {
	s.aborted = true
	s.gen++
	s.timers.StopAll()
}

// Step returns the current step.
func (s *Sequence) Step() stage.IntroStep { return s.step }

// Pending returns the number of scheduled steps.
func (s *Sequence) Pending() int { return s.timers.Len() }
