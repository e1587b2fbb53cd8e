package playback

import (
	"errors"
	"fmt"

	"github.com/roach88/storyreel/internal/stage"
)

// StateError reports an operation invoked outside its valid source state.
// The operation is a no-op; the error is logged and returned, never fatal.
type StateError struct {
	// Op is the rejected operation, e.g. "complete_loading".
	Op string

	// Phase is the phase the controller was in.
	Phase stage.Phase

	// Reason describes why the operation was rejected.
	Reason string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s in phase %s: %s", e.Op, e.Phase, e.Reason)
	}
	return fmt.Sprintf("invalid %s in phase %s", e.Op, e.Phase)
}

// IsStateError returns true if err is or wraps a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
