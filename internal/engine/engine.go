package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/story"
)

// ErrStopped is returned by Call after the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// Engine owns one playback controller and serializes every input to it.
//
// CRITICAL: The controller is only touched from the Run goroutine.
//
// Thread-safety model:
//   - Dispatch(), Gesture(), Call(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - observers registered with WithObserver run on the Run goroutine
type Engine struct {
	queue  *eventQueue
	clock  *loopClock
	ctl    *playback.Controller
	policy gesture.Policy
	logger *slog.Logger

	ctlOpts   []playback.Option
	tapZone   bool
	observers []func(playback.Event)
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine and its controller.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithControllerOptions forwards options to the playback controller.
func WithControllerOptions(opts ...playback.Option) EngineOption {
	return func(e *Engine) { e.ctlOpts = append(e.ctlOpts, opts...) }
}

// WithTapZone selects the tap-zone gesture policy instead of the default
// press-duration policy.
func WithTapZone() EngineOption {
	return func(e *Engine) { e.tapZone = true }
}

// WithObserver subscribes fn to every controller event. fn runs on the loop
// goroutine, so it may write to a store without further locking.
func WithObserver(fn func(playback.Event)) EngineOption {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// New creates an engine playing deck. Timers are scheduled on base and run
// on the loop.
func New(deck story.Deck, base clock.Clock, opts ...EngineOption) *Engine {
	e := &Engine{
		queue:  newEventQueue(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.clock = newLoopClock(base, e.queue)

	ctlOpts := append([]playback.Option{playback.WithLogger(e.logger)}, e.ctlOpts...)
	e.ctl = playback.New(deck, e.clock, ctlOpts...)

	if e.tapZone {
		e.policy = gesture.NewTapZonePolicy(e.ctl, e.logger)
	} else {
		e.policy = gesture.NewPressPolicy(e.ctl, e.clock, gesture.WithPressLogger(e.logger))
	}

	e.ctl.Subscribe(func(ev playback.Event) {
		if ev.Name == playback.EventRestart {
			e.policy.Reset()
		}
	})
	for _, fn := range e.observers {
		e.ctl.Subscribe(fn)
	}
	return e
}

// Dispatch submits a command. Returns false if the engine has stopped.
func (e *Engine) Dispatch(cmd playback.Command) bool {
	return e.queue.Enqueue(Event{Type: EventTypeCommand, Command: cmd})
}

// Gesture submits a pointer event. Returns false if the engine has stopped.
func (e *Engine) Gesture(ev gesture.Event) bool {
	return e.queue.Enqueue(Event{Type: EventTypeGesture, Gesture: ev})
}

// Call runs fn against the controller on the loop and waits for it. Events
// queued before the call are processed first.
func (e *Engine) Call(ctx context.Context, fn func(*playback.Controller)) error {
	done := make(chan struct{})
	if !e.queue.Enqueue(Event{Type: EventTypeCall, call: fn, done: done}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the render state, read on the loop.
func (e *Engine) Snapshot(ctx context.Context) (playback.Snapshot, error) {
	var snap playback.Snapshot
	err := e.Call(ctx, func(c *playback.Controller) { snap = c.Snapshot() })
	return snap, err
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(event); err != nil {
				logEventError(e.logger, event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed with the queue, so this also
			// fires on Stop.
			if e.queue.Len() == 0 && e.queue.Closed() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine. Events already queued are still
// processed before Run returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// processEvent routes an event to its handler.
// CRITICAL: Called only from Run() goroutine.
func (e *Engine) processEvent(event Event) error {
	switch event.Type {
	case EventTypeCommand:
		e.logger.Debug("processing command", "command", string(event.Command))
		return e.ctl.Do(event.Command)

	case EventTypeGesture:
		e.policy.Handle(event.Gesture)
		return nil

	case EventTypeTimer:
		if event.fire == nil {
			return fmt.Errorf("timer event missing callback")
		}
		event.fire()
		return nil

	case EventTypeCall:
		defer close(event.done)
		if event.call == nil {
			return fmt.Errorf("call event missing function")
		}
		event.call(e.ctl)
		return nil

	default:
		return fmt.Errorf("unknown event type: %d", event.Type)
	}
}

// logEventError logs a failed event and lets the loop continue.
func logEventError(logger *slog.Logger, event Event, err error) {
	attrs := []any{"type", event.Type.String(), "error", err}
	if event.Type == EventTypeCommand {
		attrs = append(attrs, "command", string(event.Command))
	}
	if playback.IsStateError(err) {
		logger.Debug("event rejected", attrs...)
		return
	}
	logger.Error("event processing failed", attrs...)
}
