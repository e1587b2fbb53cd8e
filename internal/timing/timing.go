// Package timing derives how long a slide stays on screen before it
// auto-advances.
//
// The duration models the staggered text reveal of a slide: a 400ms initial
// delay, an 800ms stagger per additional line, a 600ms fade-in of the last
// line, and a fixed 3s reading buffer. The result is floored at 5s so short
// slides are not dismissed too fast. Finale slides never auto-advance.
package timing

import (
	"math"
	"time"

	"github.com/roach88/storyreel/internal/story"
)

const (
	// InitialDelay precedes the first line.
	InitialDelay = 400 * time.Millisecond
	// LineStagger separates consecutive line reveals.
	LineStagger = 800 * time.Millisecond
	// FadeIn is the reveal animation of a single line.
	FadeIn = 600 * time.Millisecond
	// ReadingBuffer is the time left to read after the last line appears.
	ReadingBuffer = 3 * time.Second
	// MinDuration is the floor for every non-finale slide.
	MinDuration = 5 * time.Second
)

// Indefinite is the sentinel duration of a slide that never auto-advances.
const Indefinite = time.Duration(math.MaxInt64)

// ComputeDuration returns the auto-advance duration for slide. It is pure
// and must be re-derived whenever the active slide changes.
func ComputeDuration(slide story.Slide) time.Duration {
	if slide.IsFinale() {
		return Indefinite
	}
	return ForLines(slide.LineCount())
}

// ForLines is ComputeDuration for a bare line count. Counts below one are
// treated as one.
func ForLines(lineCount int) time.Duration {
	n := max(1, lineCount)
	d := InitialDelay + time.Duration(n-1)*LineStagger + FadeIn + ReadingBuffer
	return max(MinDuration, d)
}

// IsIndefinite reports whether d is the never-advance sentinel.
func IsIndefinite(d time.Duration) bool {
	return d == Indefinite
}

// LineRevealAt returns when line i (zero-based) starts fading in, measured
// from the moment the slide becomes active. Presentation layers use it to
// stagger text; it is exported so the reveal and the countdown share one
// source of truth.
func LineRevealAt(i int) time.Duration {
	if i < 0 {
		i = 0
	}
	return InitialDelay + time.Duration(i)*LineStagger
}
