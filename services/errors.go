package services

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrContextClosed    = errors.New("data context is closed")
	ErrValidation       = errors.New("validation error")
)

// ValidationError reports bad input such as an empty required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets callers match any validation failure with ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SaveError reports a flush that did not complete. The context keeps its
// pending changes, so Save can be retried.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save changes: %v", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// QueryError reports a query that could not run, or a result set that lost
// its store.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
