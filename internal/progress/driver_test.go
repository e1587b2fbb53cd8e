package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyreel/internal/testutil"
	"github.com/roach88/storyreel/internal/timing"
)

type counter struct{ n int }

func (c *counter) inc() { c.n++ }

func TestDriver_CompletesOnceAtDuration(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(5*time.Second, false, c.inc)

	mc.Advance(4999 * time.Millisecond)
	assert.Equal(t, 0, c.n)
	assert.InDelta(t, 0.9998, d.Fraction(), 1e-9)

	mc.Advance(time.Millisecond)
	assert.Equal(t, 1, c.n)
	assert.True(t, d.Done())
	assert.Equal(t, 1.0, d.Fraction())

	mc.Advance(time.Minute)
	assert.Equal(t, 1, c.n)
}

func TestDriver_NoDoubleAdvance(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(2*time.Second, false, c.inc)
	mc.Advance(2 * time.Second)
	// A stray "bar ended" event right after the timer fired.
	d.Finish()
	d.Finish()

	assert.Equal(t, 1, c.n)
}

func TestDriver_FinishBeforeTimerThenTimer(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(2*time.Second, false, c.inc)
	mc.Advance(1999 * time.Millisecond)
	d.Finish()
	mc.Advance(time.Second)

	assert.Equal(t, 1, c.n)
	assert.Equal(t, 0, mc.Pending(), "finish stops the timer")
}

func TestDriver_PauseResumePreservesElapsed(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(10*time.Second, false, c.inc)
	mc.Advance(4 * time.Second)
	d.Pause()
	assert.InDelta(t, 0.4, d.Fraction(), 1e-9)

	mc.Advance(3 * time.Second)
	assert.InDelta(t, 0.4, d.Fraction(), 1e-9, "no time accrues while paused")
	assert.Equal(t, 0, c.n)

	d.Resume()
	mc.Advance(5999 * time.Millisecond)
	assert.Equal(t, 0, c.n, "not 4s after resume")

	mc.Advance(time.Millisecond)
	assert.Equal(t, 1, c.n, "exactly 6s after resume")
}

func TestDriver_FinishIgnoredWhilePaused(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(3*time.Second, false, c.inc)
	d.Pause()
	d.Finish()
	assert.Equal(t, 0, c.n)

	d.Resume()
	mc.Advance(3 * time.Second)
	assert.Equal(t, 1, c.n)
}

func TestDriver_RepeatedPauseResumeIsIdempotent(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(4*time.Second, false, c.inc)
	mc.Advance(time.Second)
	d.Pause()
	d.Pause()
	mc.Advance(time.Second)
	d.Resume()
	d.Resume()
	assert.Equal(t, 1, mc.Pending(), "a second resume must not schedule a second timer")

	mc.Advance(3 * time.Second)
	assert.Equal(t, 1, c.n)
}

func TestDriver_StartPaused(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(5*time.Second, true, c.inc)
	assert.True(t, d.Paused())
	mc.Advance(time.Minute)
	assert.Equal(t, 0, c.n)
	assert.Equal(t, 0.0, d.Fraction())

	d.Resume()
	mc.Advance(5 * time.Second)
	assert.Equal(t, 1, c.n)
}

func TestDriver_IndefiniteNeverCompletes(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(timing.Indefinite, false, c.inc)
	assert.Equal(t, 0, mc.Pending(), "indefinite countdown schedules no timer")

	mc.Advance(24 * time.Hour)
	d.Finish()
	d.Pause()
	d.Resume()
	mc.Advance(24 * time.Hour)

	assert.Equal(t, 0, c.n)
	assert.Equal(t, 0.0, d.Fraction())
}

func TestDriver_RestartDiscardsStaleTimer(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var first, second counter

	d.Start(5*time.Second, false, first.inc)
	mc.Advance(4 * time.Second)
	d.Start(5*time.Second, false, second.inc)
	assert.Equal(t, 0.0, d.Fraction(), "new slide starts from zero")

	mc.Advance(time.Second)
	assert.Equal(t, 0, first.n, "old countdown never fires")
	assert.Equal(t, 0, second.n)

	mc.Advance(4 * time.Second)
	assert.Equal(t, 0, first.n)
	assert.Equal(t, 1, second.n)
}

func TestDriver_Cancel(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	var c counter

	d.Start(time.Second, false, c.inc)
	d.Cancel()
	require.False(t, d.Active())

	mc.Advance(time.Minute)
	d.Finish()
	assert.Equal(t, 0, c.n)
	assert.Equal(t, 0.0, d.Fraction())
	assert.Equal(t, time.Duration(0), d.Elapsed())
}

func TestDriver_CallbackMayStartNextCountdown(t *testing.T) {
	mc := testutil.NewManualClock()
	d := New(mc)
	completions := 0

	var next func()
	next = func() {
		completions++
		if completions < 3 {
			d.Start(time.Second, false, next)
		}
	}
	d.Start(time.Second, false, next)

	mc.Advance(10 * time.Second)
	assert.Equal(t, 3, completions)
}
