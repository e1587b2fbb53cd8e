// Package audiotest provides an audio.Sink that records intents for tests.
package audiotest

import (
	"sync"

	"github.com/roach88/storyreel/internal/audio"
)

// Recorder is an audio.Sink that keeps every intent it receives.
type Recorder struct {
	mu      sync.Mutex
	Intents []audio.Intent
}

// Apply implements audio.Sink.
func (r *Recorder) Apply(in audio.Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Intents = append(r.Intents, in)
}

// Kinds returns the kind of every recorded intent, in order.
func (r *Recorder) Kinds() []audio.IntentKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audio.IntentKind, len(r.Intents))
	for i, in := range r.Intents {
		out[i] = in.Kind
	}
	return out
}

// Plays returns the tracks of recorded play intents, in order.
func (r *Recorder) Plays() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, in := range r.Intents {
		if in.Kind == audio.IntentPlay {
			out = append(out, in.Track)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Intents = nil
}
