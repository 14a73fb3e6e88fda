package service

import (
	"errors"
	"fmt"
)

// Errors returned by the service layer. Handlers map them with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrStudentNotFound = errors.New("student not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrTotalMismatch   = errors.New("submitted total does not match catalog fees")
	ErrPersistence     = errors.New("could not save record")
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// ValidationError carries the offending field for a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
