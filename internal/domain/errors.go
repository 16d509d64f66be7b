package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. The concrete error types below
// carry diagnostics and match these sentinels.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrState      = errors.New("invalid state")
)

// NotFoundError reports a missing work unit, epic, or prefix. The message
// always includes the id exactly as the caller supplied it.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound constructs a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError reports malformed input: an estimate outside the allowed
// set, a malformed epic or prefix identifier, a negative token delta. The
// message spells out the full set of valid values where one exists.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation constructs a ValidationError with a formatted message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StateError reports an operation that is not permitted in the unit's
// current stage, or a reference to an undefined stage.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func (e *StateError) Is(target error) bool { return target == ErrState }

// NewState constructs a StateError with a formatted message.
func NewState(format string, args ...any) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}
