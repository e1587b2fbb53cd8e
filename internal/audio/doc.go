// Package audio decides which background track should be playing and turns
// track changes into fade intents for an output collaborator.
//
// The package never decodes or mixes sound. SelectTrack is a pure mapping
// from playback position to a track path; Mixer diffs successive selections
// and emits Intents (play, fade out, release, stop) to a Sink; Catalog reads
// tag metadata for the now-playing label.
//
// Crossfade rules:
//   - An unchanged selection is a no-op.
//   - The outgoing track fades out over the fade interval and is released
//     only when the fade completes.
//   - The incoming track fades in over the same interval, except the first
//     track of an epoch, which starts at target volume.
//   - A start blocked by autoplay restrictions is retried once, on the next
//     user interaction, and only if that track is still selected.
//   - Stop releases everything immediately, whatever the fade state.
package audio
