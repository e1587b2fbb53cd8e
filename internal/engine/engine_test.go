package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/stage"
	"github.com/roach88/storyreel/internal/story"
	"github.com/roach88/storyreel/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startEngine runs e in the background and stops it when the test ends.
func startEngine(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Error("engine did not stop")
		}
	})
}

func snapshot(t *testing.T, e *Engine) playback.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}

func newEngine(t *testing.T, clk *testutil.ManualClock, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{WithLogger(discardLogger())}
	return New(story.Default(), clk, append(base, opts...)...)
}

func TestEngine_Run_StopsOnContext(t *testing.T) {
	e := newEngine(t, testutil.NewManualClock())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on context cancellation")
	}
}

func TestEngine_Stop_DrainsQueue(t *testing.T) {
	var events []playback.EventName
	e := newEngine(t, testutil.NewManualClock(), WithObserver(func(ev playback.Event) {
		events = append(events, ev.Name)
	}))

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Stop()
	assert.False(t, e.Dispatch(playback.CmdAdvance), "dispatch after stop")

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(context.Background()) }()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, []playback.EventName{playback.EventLoadingComplete, playback.EventTransitionComplete}, events)
}

func TestEngine_CommandsInOrder(t *testing.T) {
	e := newEngine(t, testutil.NewManualClock())
	startEngine(t, e)

	for _, cmd := range []playback.Command{
		playback.CmdCompleteLoading,
		playback.CmdCompleteTransition,
		playback.CmdAdvance,
		playback.CmdAdvance,
	} {
		require.True(t, e.Dispatch(cmd))
	}

	snap := snapshot(t, e)
	assert.Equal(t, stage.Story, snap.Phase)
	assert.Equal(t, 2, snap.SlideIndex)
}

func TestEngine_RejectedCommandKeepsRunning(t *testing.T) {
	e := newEngine(t, testutil.NewManualClock())
	startEngine(t, e)

	e.Dispatch(playback.CmdAdvance) // invalid while loading
	e.Dispatch(playback.CmdCompleteLoading)

	assert.Equal(t, stage.Transitioning, snapshot(t, e).Phase)
}

func TestEngine_TimersRunOnLoop(t *testing.T) {
	clk := testutil.NewManualClock()
	e := newEngine(t, clk)
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	require.Equal(t, 0, snapshot(t, e).SlideIndex)

	clk.Advance(7200 * time.Millisecond)

	// The fired countdown was queued ahead of this call.
	assert.Equal(t, 1, snapshot(t, e).SlideIndex)
}

func TestEngine_TransitionTimer(t *testing.T) {
	clk := testutil.NewManualClock()
	e := newEngine(t, clk)
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	require.Equal(t, stage.Transitioning, snapshot(t, e).Phase)

	clk.Advance(playback.DefaultTransitionDelay)
	assert.Equal(t, stage.Story, snapshot(t, e).Phase)
}

func TestEngine_HoldGesture(t *testing.T) {
	clk := testutil.NewManualClock()
	e := newEngine(t, clk)
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Gesture(gesture.Event{Kind: gesture.Down, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now()})
	require.False(t, snapshot(t, e).Paused)

	clk.Advance(gesture.HoldThreshold)
	assert.True(t, snapshot(t, e).Paused)

	clk.Advance(time.Second)
	e.Gesture(gesture.Event{Kind: gesture.Up, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now()})
	snap := snapshot(t, e)
	assert.False(t, snap.Paused)
	assert.Equal(t, 0, snap.SlideIndex, "a hold is not a tap")
}

func TestEngine_TapGesture(t *testing.T) {
	clk := testutil.NewManualClock()
	e := newEngine(t, clk)
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Gesture(gesture.Event{Kind: gesture.Down, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now()})
	e.Gesture(gesture.Event{Kind: gesture.Up, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now().Add(80 * time.Millisecond)})

	assert.Equal(t, 1, snapshot(t, e).SlideIndex)
}

func TestEngine_TapZonePolicy(t *testing.T) {
	clk := testutil.NewManualClock()
	e := newEngine(t, clk, WithTapZone())
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Gesture(gesture.Event{Kind: gesture.Click, X: 900, Y: 100, Width: 1000, Height: 800, At: clk.Now()})
	e.Gesture(gesture.Event{Kind: gesture.Click, X: 900, Y: 700, Width: 1000, Height: 800, At: clk.Now()})

	assert.Equal(t, 1, snapshot(t, e).SlideIndex)
}

func TestEngine_RestartResetsPolicy(t *testing.T) {
	clk := testutil.NewManualClock()
	var events []playback.EventName
	e := newEngine(t, clk, WithObserver(func(ev playback.Event) { events = append(events, ev.Name) }))
	startEngine(t, e)

	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Gesture(gesture.Event{Kind: gesture.Down, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now()})
	snapshot(t, e)
	clk.Advance(gesture.HoldThreshold)
	require.True(t, snapshot(t, e).Paused)

	e.Dispatch(playback.CmdRestart)
	e.Dispatch(playback.CmdCompleteLoading)
	e.Dispatch(playback.CmdCompleteTransition)
	e.Gesture(gesture.Event{Kind: gesture.Up, X: 900, Y: 300, Width: 1000, Height: 800, At: clk.Now()})

	snap := snapshot(t, e)
	assert.Equal(t, uint64(1), snap.Epoch)
	assert.False(t, snap.Paused)
	assert.NotContains(t, events, playback.EventResume, "the press from the previous epoch is forgotten")
}

func TestEngine_CallAfterStop(t *testing.T) {
	e := newEngine(t, testutil.NewManualClock())
	e.Stop()

	_, err := e.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestLoopClock_StopBeforeLoopRuns(t *testing.T) {
	clk := testutil.NewManualClock()
	q := newEventQueue()
	lc := newLoopClock(clk, q)

	ran := false
	timer := lc.AfterFunc(time.Second, func() { ran = true })
	clk.Advance(time.Second)
	require.Equal(t, 1, q.Len(), "base timer posts onto the queue")

	assert.True(t, timer.Stop(), "still stoppable until the loop runs it")

	ev, ok := q.TryDequeue()
	require.True(t, ok)
	ev.fire()
	assert.False(t, ran)
	assert.False(t, timer.Stop())
}

func TestLoopClock_RunsOnce(t *testing.T) {
	clk := testutil.NewManualClock()
	q := newEventQueue()
	lc := newLoopClock(clk, q)

	runs := 0
	timer := lc.AfterFunc(0, func() { runs++ })
	clk.Advance(0)

	ev, ok := q.TryDequeue()
	require.True(t, ok)
	ev.fire()
	ev.fire()

	assert.Equal(t, 1, runs)
	assert.False(t, timer.Stop())
	assert.Equal(t, clk.Now(), lc.Now())
}
