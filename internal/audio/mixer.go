package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/roach88/storyreel/internal/clock"
)

const (
	// DefaultVolume is the target volume of a playing track.
	DefaultVolume = 0.5
	// DefaultFade is the fade-in and fade-out interval.
	DefaultFade = time.Second
)

// IntentKind is what the output should do.
type IntentKind int

const (
	// IntentPlay starts a new instance of Track.
	IntentPlay IntentKind = iota + 1
	// IntentFadeOut ramps an instance down to zero.
	IntentFadeOut
	// IntentRelease frees an instance after its fade-out.
	IntentRelease
	// IntentStop stops and frees an instance immediately.
	IntentStop
)

func (k IntentKind) String() string {
	switch k {
	case IntentPlay:
		return "play"
	case IntentFadeOut:
		return "fade_out"
	case IntentRelease:
		return "release"
	case IntentStop:
		return "stop"
	default:
		return fmt.Sprintf("intent(%d)", int(k))
	}
}

// Direction is the fade applied with an intent.
type Direction int

const (
	FadeNone Direction = iota
	FadeIn
	FadeOut
)

func (d Direction) String() string {
	switch d {
	case FadeNone:
		return "none"
	case FadeIn:
		return "in"
	case FadeOut:
		return "out"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Intent is one instruction for the audio output. Handle identifies a single
// playing instance so the same track can fade out while a new instance of it
// fades in.
type Intent struct {
	Kind         IntentKind
	Handle       uint64
	Track        string
	Volume       float64
	Fade         Direction
	FadeDuration time.Duration
	// Retry marks a second start attempt after an autoplay block.
	Retry bool
}

// Sink consumes intents. Implementations do the actual decoding and mixing.
type Sink interface {
	Apply(Intent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Intent)

func (f SinkFunc) Apply(in Intent) { f(in) }

// MixerOption configures a Mixer.
type MixerOption func(*Mixer)

// WithVolume sets the target volume.
func WithVolume(v float64) MixerOption {
	return func(m *Mixer) { m.volume = v }
}

// WithFade sets the fade interval.
func WithFade(d time.Duration) MixerOption {
	return func(m *Mixer) { m.fade = d }
}

// WithMixerLogger sets the logger.
func WithMixerLogger(l *slog.Logger) MixerOption {
	return func(m *Mixer) { m.logger = l }
}

type instance struct {
	handle uint64
	track  string
}

// Mixer tracks the active track and emits crossfade intents. One Mixer lives
// for one epoch; a restart stops it and builds a new one.
//
// Not safe for concurrent use.
type Mixer struct {
	sink   Sink
	timers *clock.Group
	logger *slog.Logger
	volume float64
	fade   time.Duration

	nextHandle uint64
	current    *instance
	started    bool

	// fading holds instances that are fading out, keyed by handle.
	fading map[uint64]*instance
	// releases holds the release timer of each fading instance.
	releases map[uint64]clock.Timer

	// pendingRetry is the instance whose start was blocked and that has not
	// been retried yet; retried records instances already retried once.
	pendingRetry *instance
	lastPlay     map[uint64]Intent
	retried      map[uint64]bool

	stopped bool
}

// NewMixer returns a mixer emitting to sink and scheduling fades on c.
func NewMixer(c clock.Clock, sink Sink, opts ...MixerOption) *Mixer {
	m := &Mixer{
		sink:     sink,
		timers:   clock.NewGroup(c),
		logger:   slog.Default(),
		volume:   DefaultVolume,
		fade:     DefaultFade,
		fading:   make(map[uint64]*instance),
		releases: make(map[uint64]clock.Timer),
		lastPlay: make(map[uint64]Intent),
		retried:  make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the selected track, or "" for silence.
func (m *Mixer) Current() string {
	if m.current == nil {
		return ""
	}
	return m.current.track
}

// Update switches to track. It reports whether anything changed; selecting
// the track that is already playing is a no-op.
func (m *Mixer) Update(track string) bool {
	if m.stopped {
		return false
	}
	if track == m.Current() {
		return false
	}

	if m.current != nil {
		m.fadeOut(m.current)
		m.current = nil
	}
	m.pendingRetry = nil

	if track == "" {
		m.logger.Debug("audio silenced")
		return true
	}

	m.nextHandle++
	inst := &instance{handle: m.nextHandle, track: track}
	m.current = inst

	in := Intent{
		Kind:   IntentPlay,
		Handle: inst.handle,
		Track:  track,
		Volume: m.volume,
	}
	if m.started {
		in.Fade = FadeIn
		in.FadeDuration = m.fade
	}
	m.started = true
	m.lastPlay[inst.handle] = in

	m.logger.Debug("audio track changed", "track", track, "handle", inst.handle, "fade", in.Fade.String())
	m.sink.Apply(in)
	return true
}

func (m *Mixer) fadeOut(inst *instance) {
	m.sink.Apply(Intent{
		Kind:         IntentFadeOut,
		Handle:       inst.handle,
		Track:        inst.track,
		Volume:       0,
		Fade:         FadeOut,
		FadeDuration: m.fade,
	})
	delete(m.lastPlay, inst.handle)
	delete(m.retried, inst.handle)

	m.fading[inst.handle] = inst
	handle := inst.handle
	m.releases[handle] = m.timers.AfterFunc(m.fade, func() {
		m.release(handle)
	})
}

func (m *Mixer) release(handle uint64) {
	inst, ok := m.fading[handle]
	if !ok {
		return
	}
	delete(m.fading, handle)
	delete(m.releases, handle)
	m.sink.Apply(Intent{Kind: IntentRelease, Handle: handle, Track: inst.track})
}

// PlayFailed is reported by the output when an instance of track failed to
// start. An autoplay block arms a single retry for the next interaction if
// the track is still selected. Any other failure is returned as an
// AssetUnavailableError and playback continues silently.
func (m *Mixer) PlayFailed(track string, err error) error {
	if !errors.Is(err, ErrAutoplayBlocked) {
		ae := &AssetUnavailableError{Track: track, Err: err}
		m.logger.Warn("audio asset unavailable", "track", track, "error", err)
		return ae
	}

	if m.current == nil || m.current.track != track {
		m.logger.Debug("discarding stale autoplay failure", "track", track)
		return nil
	}
	if m.retried[m.current.handle] {
		m.logger.Warn("autoplay blocked after retry, giving up", "track", track)
		return nil
	}
	m.pendingRetry = m.current
	return nil
}

// Interact is called on every user interaction. It performs the armed
// autoplay retry, at most once per instance.
func (m *Mixer) Interact() bool {
	inst := m.pendingRetry
	m.pendingRetry = nil
	if inst == nil || m.stopped {
		return false
	}
	if m.current == nil || m.current.handle != inst.handle {
		m.logger.Debug("discarding stale autoplay retry", "track", inst.track)
		return false
	}

	m.retried[inst.handle] = true
	in := m.lastPlay[inst.handle]
	in.Retry = true
	m.logger.Info("retrying blocked track", "track", inst.track)
	m.sink.Apply(in)
	return true
}

// Stop stops and releases every instance immediately, including those that
// are mid-fade, and cancels all pending release timers. The mixer ignores
// further updates.
func (m *Mixer) Stop() {
	if m.stopped {
		return
	}
	m.stopped = true
	m.timers.StopAll()

	if m.current != nil {
		m.sink.Apply(Intent{Kind: IntentStop, Handle: m.current.handle, Track: m.current.track})
		m.current = nil
	}
	for _, h := range slices.Sorted(maps.Keys(m.fading)) {
		m.sink.Apply(Intent{Kind: IntentStop, Handle: h, Track: m.fading[h].track})
	}
	m.fading = make(map[uint64]*instance)
	m.releases = make(map[uint64]clock.Timer)
	m.pendingRetry = nil
}

// Fading returns the number of instances still fading out.
func (m *Mixer) Fading() int {
	return len(m.fading)
}
