package orchestration

import (
	"errors"
	"fmt"
)

// ErrStackNotFound reports a derived-state miss: the requested stack does
// not exist in the current snapshot. Stacks are derived, not stored, so
// one may legitimately disappear between two reads; this is a normal
// outcome, not an infrastructure failure.
var ErrStackNotFound = errors.New("stack not found")

// ActionError reports a multi-container action that stopped partway: the
// engine call for one container failed after calls for Applied containers
// had already been issued. Nothing is rolled back because the engine has
// no transactional multi-container semantics; callers should re-read the
// stack to observe what actually changed.
type ActionError struct {
	StackID     string
	Service     string
	ContainerID string
	Applied     int
	Err         error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action on stack %q failed at service %q (container %s) after %d call(s): %v",
		e.StackID, e.Service, e.ContainerID, e.Applied, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
