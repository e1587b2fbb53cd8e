package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyreel/internal/playback"
)

func TestEventQueue_EnqueueDequeue(t *testing.T) {
	q := newEventQueue()

	ok := q.Enqueue(Event{Type: EventTypeCommand, Command: playback.CmdAdvance})
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, EventTypeCommand, got.Type)
	assert.Equal(t, playback.CmdAdvance, got.Command)
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	cmds := []playback.Command{playback.CmdCompleteLoading, playback.CmdCompleteTransition, playback.CmdAdvance}
	for _, c := range cmds {
		q.Enqueue(Event{Type: EventTypeCommand, Command: c})
	}

	for _, want := range cmds {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, e.Command)
	}
}

func TestEventQueue_TryDequeue_Empty(t *testing.T) {
	q := newEventQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_Close_SignalsWait(t *testing.T) {
	q := newEventQueue()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not unblock after close")
	}
	assert.True(t, q.Closed())

	// Closing twice is harmless.
	q.Close()
}

func TestEventQueue_Enqueue_AfterClose(t *testing.T) {
	q := newEventQueue()
	q.Close()

	ok := q.Enqueue(Event{Type: EventTypeCommand, Command: playback.CmdAdvance})
	assert.False(t, ok, "enqueue after close should return false")
}

func TestEventQueue_Len(t *testing.T) {
	q := newEventQueue()

	assert.Equal(t, 0, q.Len())

	q.Enqueue(Event{Type: EventTypeCommand, Command: playback.CmdPause})
	assert.Equal(t, 1, q.Len())

	q.Enqueue(Event{Type: EventTypeCommand, Command: playback.CmdResume})
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())

	q.TryDequeue()
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_ThreadSafe(t *testing.T) {
	q := newEventQueue()

	const producers = 10
	const eventsPerProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerProducer; i++ {
				q.Enqueue(Event{Type: EventTypeTimer, fire: func() {}})
			}
		}()
	}
	wg.Wait()

	received := 0
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		received++
	}
	assert.Equal(t, producers*eventsPerProducer, received)
}
