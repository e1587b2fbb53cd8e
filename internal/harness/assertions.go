package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] +%dms %s %s[%d] epoch=%d\n",
				ev.Seq, ev.AtMS, ev.Event, ev.Phase, ev.SlideIndex, ev.Epoch)
		}
	}
	return buf.String()
}

// assertTraceContains checks if the trace contains the event, with a state
// matching the assertion's subset if one is given.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if ev.Event == assertion.Event && len(assertion.State.mismatches(ev)) == 0 {
			return nil
		}
	}

	expected := "event " + assertion.Event
	if desc := assertion.State.String(); desc != "" {
		expected += " with " + desc
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that events appear in the specified order.
// Intervening events are allowed; a name listed twice must occur twice.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Events {
		found := false
		for pos < len(trace) {
			ev := trace[pos]
			pos++
			if ev.Event == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual:   fmt.Sprintf("no %s after the preceding events", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the event appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Event == assertion.Event {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertNoEventAfter checks that Event never occurs after the first After.
// Passes trivially when After never occurs.
func assertNoEventAfter(trace []TraceEvent, assertion Assertion) error {
	seen := false
	for _, ev := range trace {
		if seen && ev.Event == assertion.Event {
			return &AssertionError{
				Type:     AssertNoEventAfter,
				Expected: fmt.Sprintf("no %s after %s", assertion.Event, assertion.After),
				Actual:   fmt.Sprintf("%s at seq %d", ev.Event, ev.Seq),
				Trace:    trace,
			}
		}
		if ev.Event == assertion.After {
			seen = true
		}
	}
	return nil
}

// assertFinalState compares the state after the last step.
func assertFinalState(final TraceEvent, assertion Assertion) error {
	diffs := assertion.State.mismatches(final)
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: assertion.State.String(),
		Actual:   strings.Join(diffs, ", "),
	}
}

// mismatches lists every expected field that differs from ev. A nil
// expectation matches anything.
func (e *StateExpect) mismatches(ev TraceEvent) []string {
	if e == nil {
		return nil
	}
	var out []string
	check := func(field string, ok bool, actual any) {
		if !ok {
			out = append(out, fmt.Sprintf("%s=%v", field, actual))
		}
	}
	if e.Phase != nil {
		check("phase", *e.Phase == ev.Phase, ev.Phase)
	}
	if e.SlideIndex != nil {
		check("slide_index", *e.SlideIndex == ev.SlideIndex, ev.SlideIndex)
	}
	if e.Paused != nil {
		check("paused", *e.Paused == ev.Paused, ev.Paused)
	}
	if e.Epoch != nil {
		check("epoch", *e.Epoch == ev.Epoch, ev.Epoch)
	}
	if e.Finale != nil {
		check("finale", *e.Finale == ev.Finale, ev.Finale)
	}
	if e.Intro != nil {
		check("intro", *e.Intro == ev.Intro, ev.Intro)
	}
	if e.HintVisible != nil {
		check("hint_visible", *e.HintVisible == ev.HintVisible, ev.HintVisible)
	}
	if e.OneMoreThing != nil {
		check("one_more_thing", *e.OneMoreThing == ev.OneMoreThing, ev.OneMoreThing)
	}
	if e.Track != nil {
		check("track", *e.Track == ev.Track, fmt.Sprintf("%q", ev.Track))
	}
	return out
}

// String describes the expected fields in declaration order.
func (e *StateExpect) String() string {
	if e == nil {
		return ""
	}
	var parts []string
	add := func(field string, v any) {
		parts = append(parts, fmt.Sprintf("%s=%v", field, v))
	}
	if e.Phase != nil {
		add("phase", *e.Phase)
	}
	if e.SlideIndex != nil {
		add("slide_index", *e.SlideIndex)
	}
	if e.Paused != nil {
		add("paused", *e.Paused)
	}
	if e.Epoch != nil {
		add("epoch", *e.Epoch)
	}
	if e.Finale != nil {
		add("finale", *e.Finale)
	}
	if e.Intro != nil {
		add("intro", *e.Intro)
	}
	if e.HintVisible != nil {
		add("hint_visible", *e.HintVisible)
	}
	if e.OneMoreThing != nil {
		add("one_more_thing", *e.OneMoreThing)
	}
	if e.Track != nil {
		add("track", fmt.Sprintf("%q", *e.Track))
	}
	return strings.Join(parts, ", ")
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertNoEventAfter:
			err = assertNoEventAfter(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.Final, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
