package contrib

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is the sentinel wrapped by NotFoundError so callers can use
// errors.Is across store implementations.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an absent grant or contribution. Surfaced as a
// 404-equivalent, never retried.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError reports a state change that is not legal from the
// record's current status. Surfaced to the reviewer, never silently ignored.
type InvalidTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %q", e.Action, e.Entity, e.From)
}
