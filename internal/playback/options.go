package playback

import (
	"log/slog"
	"time"

	"github.com/roach88/storyreel/internal/audio"
	"github.com/roach88/storyreel/internal/finale"
)

const (
	// DefaultTransitionDelay is the length of the cinematic transition.
	DefaultTransitionDelay = 6500 * time.Millisecond
	// DefaultHintDelay is how long a slide shows before the tap hint.
	DefaultHintDelay = 5 * time.Second
)

// Titler resolves a track path to a display title. audio.Catalog
// implements it.
type Titler interface {
	Title(track string) string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTransitionDelay sets how long the transition runs before story
// starts on its own. Zero disables auto-complete; CompleteTransition must
// then be called explicitly.
func WithTransitionDelay(d time.Duration) Option {
	return func(c *Controller) { c.transitionDelay = d }
}

// WithHintDelay sets the tap hint delay. Zero disables the hint.
func WithHintDelay(d time.Duration) Option {
	return func(c *Controller) { c.hintDelay = d }
}

// WithSink sets the audio output. Default: intents are discarded.
func WithSink(s audio.Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithSelector sets the track path mapping.
func WithSelector(s audio.Selector) Option {
	return func(c *Controller) { c.selector = s }
}

// WithTitler sets the now-playing title source. Default: the track's file
// name.
func WithTitler(t Titler) Option {
	return func(c *Controller) { c.titler = t }
}

// WithReprise makes the epilogue return to the opening track.
func WithReprise(on bool) Option {
	return func(c *Controller) { c.reprise = on }
}

// WithFinaleOptions forwards options to every finale machine.
func WithFinaleOptions(opts ...finale.Option) Option {
	return func(c *Controller) { c.finaleOpts = append(c.finaleOpts, opts...) }
}

// WithMixerOptions forwards options to every audio mixer.
func WithMixerOptions(opts ...audio.MixerOption) Option {
	return func(c *Controller) { c.mixerOpts = append(c.mixerOpts, opts...) }
}
