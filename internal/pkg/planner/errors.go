package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpected marks failures that do not belong to any other category
var ErrUnexpected = errors.New("unexpected planner failure")

// ValidationError reports a submission that is missing or has invalid fields.
// Nothing is written when it is returned.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid trip plan submission"
	}
	return fmt.Sprintf("invalid trip plan submission: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown trip plan or task
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// TransportError wraps a failed call to the planning backend
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("planning backend request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed local store operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConflictError reports a task transition out of a state that does not allow it
type ConflictError struct {
	TaskID uint
	Err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task %d: %v", e.TaskID, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }
