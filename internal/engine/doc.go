// Package engine runs a playback session on a single-writer event loop.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every input to the playback controller is an event on one FIFO queue:
//   - commands (advance, pause, restart, ...) from the console or a script
//   - pointer gestures, routed through the active gesture policy
//   - timer firings from the controller's own timers
//   - calls that read or inspect the controller
//
// Engine.Run dequeues one event at a time and runs it to completion before
// looking at the next. No two mutations of the playback state interleave.
//
// Timers:
// The controller is given a loop clock instead of the wall clock. When a
// wall-clock timer fires on its own goroutine, the loop clock only posts a
// timer event; the callback itself runs later on the loop. A timer stopped
// between firing and being dequeued never runs its callback.
//
// Errors:
// Rejected commands are logged and processing continues. Playback has no
// fatal runtime errors.
package engine
