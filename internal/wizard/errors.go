package wizard

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a generation request is already in flight.
var ErrBusy = errors.New("a generation request is already in progress")

// ValidationError is a local precondition failure that never reaches the
// network: no selection, no artifact yet, or an empty prompt.
type ValidationError struct {
	Step    int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// PreconditionError means an operation is not allowed in the current state.
type PreconditionError struct {
	Op      string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}
