package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError rejects malformed or incomplete input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError signals a unique-constraint collision (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// ImportError aborts a whole CSV import, as opposed to the row-level
// errors collected in the summary (HTTP 400).
type ImportError struct {
	Message string
	Detail  string
}

func (e *ImportError) Error() string { return e.Message }

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
