package services

import (
	"fmt"
)

// ValidationError reports malformed or missing caller input for one field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ReferenceNotFoundError reports a referenced entity that does not exist or
// has been soft-deleted. Both cases are indistinguishable to the caller.
type ReferenceNotFoundError struct {
	Entity string
	ID     uint
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a uniqueness violation on Field
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

// OrderProcessingError wraps any failure inside the order unit of work. The
// transaction has been rolled back by the time it is returned.
type OrderProcessingError struct {
	Action string // "create" or "update"
	Cause  error
}

func (e *OrderProcessingError) Error() string {
	return fmt.Sprintf("failed to %s order: %v", e.Action, e.Cause)
}

func (e *OrderProcessingError) Unwrap() error {
	return e.Cause
}
