package engine

import (
	"sync"

	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/playback"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeCommand runs a controller command.
	EventTypeCommand EventType = iota + 1
	// EventTypeGesture feeds a pointer event to the gesture policy.
	EventTypeGesture
	// EventTypeTimer runs a timer callback that fired on another goroutine.
	EventTypeTimer
	// EventTypeCall runs a function against the controller.
	EventTypeCall
)

func (t EventType) String() string {
	switch t {
	case EventTypeCommand:
		return "command"
	case EventTypeGesture:
		return "gesture"
	case EventTypeTimer:
		return "timer"
	case EventTypeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is one unit of work for the loop.
type Event struct {
	Type    EventType
	Command playback.Command
	Gesture gesture.Event

	// fire runs a timer callback; call runs an inspection function.
	fire func()
	call func(*playback.Controller)
	done chan struct{}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so a timer goroutine never blocks on a busy loop.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Clear the slot so the closures it holds can be collected.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available. It is
// closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close was called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued and wakes the loop.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
