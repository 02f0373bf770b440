// Package validation provides user-input validation and the distinguished
// error types surfaced to the presentation layer.
package validation

import (
	"fmt"
	"strings"
)

// ValidationError carries one or more human-readable validation messages.
// It is raised before any persistence side effect and never retried.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "one or more validation errors occurred"
	}
	return strings.Join(e.Errors, "; ")
}

// NewValidationError builds a ValidationError from messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// NotFoundError names an entity type and key that could not be resolved.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Key)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}
