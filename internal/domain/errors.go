package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id is absent from the store.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or missing field on write.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// RelationNotFoundError means a payment references an account or cost center
// that is no longer in the store. It is a data integrity failure, not a
// client error.
type RelationNotFoundError struct {
	PaymentID int64
	Relation  string // "account" or "costCenter"
	RelatedID int64
}

func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("payment %d references missing %s %d", e.PaymentID, e.Relation, e.RelatedID)
}

// AttachmentIOError wraps a failure to save, read or delete a stored file.
type AttachmentIOError struct {
	Op   string
	Name string
	Err  error
}

func (e *AttachmentIOError) Error() string {
	return fmt.Sprintf("attachment %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *AttachmentIOError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRelationNotFound reports whether err carries a RelationNotFoundError.
func IsRelationNotFound(err error) bool {
	var r *RelationNotFoundError
	return errors.As(err, &r)
}
