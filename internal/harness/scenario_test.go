package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
policy: tap_zone
reprise: true
steps:
  - do: complete_loading
  - wait: 6.5s
  - gesture: { kind: click, x: 0.8, y: 0.2 }
  - do: open
    expect_error: true
assertions:
  - type: final_state
    state: { phase: story, slide_index: 1 }
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, PolicyTapZone, s.Policy)
	assert.True(t, s.Reprise)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, "complete_loading", s.Steps[0].Do)
	assert.Equal(t, Duration(6500*time.Millisecond), s.Steps[1].Wait)
	assert.Equal(t, "click", s.Steps[2].Gesture.Kind)
	assert.InDelta(t, 0.8, s.Steps[2].Gesture.X, 1e-9)
	assert.True(t, s.Steps[3].ExpectError)

	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].State)
	assert.Equal(t, "story", *s.Assertions[0].State.Phase)
	assert.Equal(t, 1, *s.Assertions[0].State.SlideIndex)
	assert.Nil(t, s.Assertions[0].State.Paused)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_ResolvesDeckRelativeToFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/auto_advance.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "decks", "short.yaml"), s.Deck)
}

func TestLoadScenario_MissingDeck(t *testing.T) {
	path := writeScenario(t, `
name: missing_deck
description: "Deck does not exist"
deck: nowhere.yaml
steps:
  - do: complete_loading
assertions:
  - type: trace_count
    event: advance
    count: 0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deck file not found")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "unknown field",
			content: `
name: typo
description: "d"
steps: [{do: advance}]
assertion: []
`,
			wantErr: "failed to parse YAML",
		},
		{
			name: "missing name",
			content: `
description: "d"
steps: [{do: advance}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
steps: [{do: advance}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "description is required",
		},
		{
			name: "no steps",
			content: `
name: n
description: "d"
steps: []
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "steps list is required",
		},
		{
			name: "no assertions",
			content: `
name: n
description: "d"
steps: [{do: advance}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown policy",
			content: `
name: n
description: "d"
policy: swipe
steps: [{do: advance}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: `unknown policy "swipe"`,
		},
		{
			name: "unknown command",
			content: `
name: n
description: "d"
steps: [{do: skip}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: `steps[0]: unknown command "skip"`,
		},
		{
			name: "two actions in one step",
			content: `
name: n
description: "d"
steps: [{do: advance, wait: 1s}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "exactly one of do, wait or gesture",
		},
		{
			name: "bad duration",
			content: `
name: n
description: "d"
steps: [{wait: soon}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "failed to parse YAML",
		},
		{
			name: "negative wait",
			content: `
name: n
description: "d"
steps: [{wait: -1s}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "wait must be positive",
		},
		{
			name: "gesture out of range",
			content: `
name: n
description: "d"
steps: [{gesture: {kind: down, x: 1.5, y: 0.5}}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "gesture coordinates",
		},
		{
			name: "unknown gesture kind",
			content: `
name: n
description: "d"
steps: [{gesture: {kind: swipe, x: 0.5, y: 0.5}}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: `unknown gesture kind "swipe"`,
		},
		{
			name: "expect_error without command",
			content: `
name: n
description: "d"
steps: [{wait: 1s, expect_error: true}]
assertions: [{type: trace_count, event: advance, count: 0}]
`,
			wantErr: "expect_error only applies to do",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: eventually}]
`,
			wantErr: `unknown assertion type "eventually"`,
		},
		{
			name: "unknown event",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: trace_contains, event: slide_changed}]
`,
			wantErr: `unknown event "slide_changed"`,
		},
		{
			name: "trace_order without events",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: trace_order}]
`,
			wantErr: "events list is required",
		},
		{
			name: "negative count",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: trace_count, event: advance, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
		{
			name: "no_event_after without after",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: no_event_after, event: advance}]
`,
			wantErr: "event is required for no_event_after",
		},
		{
			name: "final_state without state",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: final_state}]
`,
			wantErr: "state is required for final_state",
		},
		{
			name: "bad phase",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: final_state, state: {phase: paused}}]
`,
			wantErr: `unknown phase "paused"`,
		},
		{
			name: "bad finale step",
			content: `
name: n
description: "d"
steps: [{do: advance}]
assertions: [{type: final_state, state: {finale: proposal}}]
`,
			wantErr: `unknown finale step "proposal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
