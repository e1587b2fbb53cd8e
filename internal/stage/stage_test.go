package stage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_StringRoundTrip(t *testing.T) {
	for p := Loading; p <= Restarting; p++ {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.True(t, p.Valid())
	}
}

func TestPhase_Unknown(t *testing.T) {
	assert.False(t, Phase(42).Valid())
	assert.Equal(t, "phase(42)", Phase(42).String())

	_, err := ParsePhase("finale")
	require.Error(t, err)
}

func TestFinaleStep_StringRoundTrip(t *testing.T) {
	for s := FinaleIdle; s <= FinaleEpilogue; s++ {
		got, err := ParseFinaleStep(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseFinaleStep("accepted")
	assert.Error(t, err)
}

func TestIntroStep_String(t *testing.T) {
	assert.Equal(t, "landing", IntroLanding.String())
	assert.Equal(t, "unwrap", IntroUnwrap.String())
	assert.Equal(t, "intro(9)", IntroStep(9).String())
}

func TestIntroStep_Parse(t *testing.T) {
	for s := IntroLanding; s <= IntroUnwrap; s++ {
		got, err := ParseIntroStep(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseIntroStep("outro")
	assert.Error(t, err)
}

func TestTextMarshaling(t *testing.T) {
	type view struct {
		Phase  Phase      `json:"phase"`
		Finale FinaleStep `json:"finale"`
		Intro  IntroStep  `json:"intro"`
	}

	data, err := json.Marshal(view{Phase: Story, Finale: FinaleGiftIntro, Intro: IntroGenre})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"story","finale":"gift_intro","intro":"genre"}`, string(data))

	var back view
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, view{Phase: Story, Finale: FinaleGiftIntro, Intro: IntroGenre}, back)

	assert.Error(t, json.Unmarshal([]byte(`{"phase":"paused"}`), &back))
}
