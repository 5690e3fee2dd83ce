package workflow

import (
	"errors"
	"fmt"
)

// ErrStale is returned when an asynchronous completion arrives after the
// workflow was reset, navigated back, or superseded by a newer request.
var ErrStale = errors.New("stale completion discarded")

// PhaseError indicates an operation that is not valid in the current phase.
// The workflow is left untouched.
type PhaseError struct {
	Op    string
	Phase Phase
	Want  Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s requires phase %s, current phase is %s", e.Op, e.Want, e.Phase)
}

// TransitionError indicates a phase transition whose guard rejected it.
type TransitionError struct {
	From   Phase
	To     Phase
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot advance from %s to %s: %s", e.From, e.To, e.Reason)
}
