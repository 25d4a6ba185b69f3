package optimistic

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("you must be logged in")
	ErrUnknownKind     = errors.New("unknown mutation kind")
	ErrInvalidIntent   = errors.New("invalid mutation")
	ErrPendingComment  = errors.New("comment is still being posted")
	ErrSuperseded      = errors.New("an earlier change to the same field failed")
)

// ValidationError rejects an intent before anything is applied
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidIntent
	}
	return e.Err
}

func invalid(field, reason string, err error) error {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

// RollbackError is the terminal error of a mutation whose optimistic state
// was undone.
type RollbackError struct {
	MutationID string
	Kind       Kind
	EntityID   string
	Cause      error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s on %s rolled back: %v", e.Kind, e.EntityID, e.Cause)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}

// Message returns the text to show the user. Server messages are passed
// through unchanged.
func (e *RollbackError) Message() string {
	var sm interface{ ServerMessage() string }
	if errors.As(e.Cause, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	if e.Cause == nil {
		return "request failed"
	}
	return e.Cause.Error()
}
