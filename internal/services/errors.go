package services

import (
	"errors"
	"fmt"
)

// ErrResourceBusy is returned when the scheduling lock for a gate or desk
// could not be acquired within the configured attempts. The caller should
// retry; nothing was written.
var ErrResourceBusy = errors.New("resource is being scheduled by another request")

// ValidationError signals field-level input problems the caller can fix and
// resubmit
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ConflictKind identifies which resource a double-booking was found on
type ConflictKind string

const (
	ConflictKindGate ConflictKind = "gate"
	ConflictKindDesk ConflictKind = "desk"
)

// ConflictError signals a gate or desk double-booking. It names the occupied
// resource and the flight already holding it; the write was blocked entirely.
type ConflictError struct {
	Kind                ConflictKind
	Message             string
	ConflictingFlightID int64
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError signals that a referenced record does not exist or is
// already retired
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}
