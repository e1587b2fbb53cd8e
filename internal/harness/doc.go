// Package harness runs scripted playback scenarios against the controller.
//
// A scenario drives a fresh controller on a manual clock with commands,
// waits and pointer gestures, records every event, and then checks
// assertions against the trace and the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: hold_pauses
//	description: "A long press freezes the slide until release"
//	deck: decks/short.yaml   # optional, relative to this file
//	policy: press            # press (default) or tap_zone
//	reprise: false
//	steps:
//	  - do: complete_loading
//	  - do: complete_transition
//	  - gesture: { kind: down, x: 0.8, y: 0.5 }
//	  - wait: 1s
//	  - gesture: { kind: up, x: 0.8, y: 0.5 }
//	  - do: open
//	    expect_error: true
//	assertions:
//	  - type: trace_contains
//	    event: pause
//	    state: { slide_index: 0, paused: true }
//	  - type: final_state
//	    state: { phase: story, paused: false }
//
// Gesture coordinates are fractions of a square surface; x below 0.3 is the
// retreat zone.
//
// # Assertion Types
//
//   - trace_contains: an event appears, optionally with a matching state
//   - trace_order: events appear in the listed order
//   - trace_count: an event appears exactly N times
//   - no_event_after: an event never appears after another one
//   - final_state: the state after the last step matches
//
// # Deterministic Testing
//
// Every scenario starts from the same clock instant, with logs discarded
// and audio recorded instead of played. Timers only fire inside wait steps,
// so the same scenario always produces the same trace, and golden files
// under testdata/golden can be compared byte for byte.
package harness
