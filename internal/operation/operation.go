// Package operation implements the reversible filesystem actions an update is
// made of. Every operation is a one-shot state machine:
//
//	Pending -> Executed -> Undone | Inverted
//
// with Failed entered when Execute does not succeed. Operations hold
// [resource.Resource] references only, paths are resolved through the
// [Handler] at the time an action runs.
package operation

import (
	"fmt"

	"github.com/desertwitch/swupd/internal/resource"
)

// State is the lifecycle state of an [Operation].
type State int

const (
	Pending State = iota
	Executed
	Undone
	Inverted
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Executed:
		return "Executed"
	case Undone:
		return "Undone"
	case Inverted:
		return "Inverted"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Operation is a reversible filesystem action.
type Operation interface {
	// Execute performs the action.
	Execute(h *Handler) error

	// Undo reverts an executed action.
	Undo(h *Handler) error

	// Invert performs the action in the reverse direction.
	Invert(h *Handler) error

	// Label is a human readable description for logs and front ends.
	Label() string

	State() State

	// Resources returns the resources the operation refers to.
	Resources() []resource.Resource
}

// Discarder is implemented by operations that keep staged data around for
// their Undo. Discard purges that data, after which Undo is no longer
// possible.
type Discarder interface {
	Discard(h *Handler) error
}

func checkState(op Operation, want State) error {
	if op.State() != want {
		return fmt.Errorf("%w: %s is %s, needs %s", ErrInvalidState, op.Label(), op.State(), want)
	}

	return nil
}
