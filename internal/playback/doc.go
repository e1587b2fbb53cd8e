// Package playback implements the controller that owns the canonical
// playback state of a story session.
//
// STATE:
//
// The canonical state is {phase, slide index, paused, epoch}. Only the
// Controller mutates it. The progress driver, finale machine, intro sequence
// and audio mixer are sub-components that report back through callbacks;
// they never touch the state directly.
//
// PHASES:
//
//	loading -> transitioning -> story
//	   ^                          |
//	   +------- restarting <------+  (restart is valid from any phase)
//
// Inside story, the last slide hosts the finale sub-machine once the viewer
// accepts. From then on navigation is closed.
//
// TIMERS:
//
// Every timer the controller arms (transition auto-complete, tap hint) lives
// in a clock.Group and its callback checks the epoch, index and phase it was
// scheduled under. Sub-components guard their own timers the same way. A
// restart stops every group before the next epoch is built, so no callback
// from an earlier epoch can act on the new one.
//
// CONCURRENCY:
//
// The Controller is not safe for concurrent use. In a running program it is
// driven by engine.Engine, which serializes commands, gestures and timer
// callbacks onto one goroutine.
package playback
