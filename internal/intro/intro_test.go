package intro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyreel/internal/stage"
	"github.com/roach88/storyreel/internal/testutil"
)

func TestSequence_Steps(t *testing.T) {
	clk := testutil.NewManualClock()
	var seen []stage.IntroStep
	s := New(clk, func(st stage.IntroStep) { seen = append(seen, st) })

	assert.Equal(t, stage.IntroLanding, s.Step())
	clk.Advance(time.Minute)
	assert.Equal(t, stage.IntroLanding, s.Step(), "landing waits for open")

	require.NoError(t, s.Open())
	assert.Equal(t, stage.IntroAnalyzing, s.Step())

	clk.Advance(AnalyzingDelay)
	assert.Equal(t, stage.IntroGenre, s.Step())
	clk.Advance(GenreDelay)
	assert.Equal(t, stage.IntroArtist, s.Step())
	clk.Advance(ArtistDelay - time.Millisecond)
	assert.Equal(t, stage.IntroArtist, s.Step())
	clk.Advance(time.Millisecond)
	assert.Equal(t, stage.IntroUnwrap, s.Step())
	assert.Equal(t, 0, s.Pending())

	assert.Equal(t, []stage.IntroStep{
		stage.IntroAnalyzing, stage.IntroGenre, stage.IntroArtist, stage.IntroUnwrap,
	}, seen)
}

func TestSequence_OpenTwice(t *testing.T) {
	s := New(testutil.NewManualClock(), nil)
	require.NoError(t, s.Open())
	assert.ErrorIs(t, s.Open(), ErrOpened)
}

func TestSequence_Abort(t *testing.T) {
	clk := testutil.NewManualClock()
	s := New(clk, nil)
	require.NoError(t, s.Open())

	s.Abort()
	clk.Advance(time.Minute)
	assert.Equal(t, stage.IntroAnalyzing, s.Step())
	assert.Equal(t, 0, clk.Pending())
	assert.ErrorIs(t, s.Open(), ErrOpened)
}
