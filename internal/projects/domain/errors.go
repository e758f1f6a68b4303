package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the class of every rejected input.
	ErrValidation = errors.New("invalid input")
	// ErrUnknownServiceType is returned for service types missing from the catalog.
	ErrUnknownServiceType = fmt.Errorf("%w: unknown service type", ErrValidation)

	// ErrNotFound is the class of every missing record.
	ErrNotFound          = errors.New("not found")
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrMilestoneNotFound = fmt.Errorf("milestone %w", ErrNotFound)
	ErrClientNotFound    = fmt.Errorf("client %w", ErrNotFound)

	// ErrTerminalState is returned when advancing a complete project.
	ErrTerminalState = errors.New("project is already at its final stage")
	// ErrUnknownStage means a stored status is not part of the project's
	// stage sequence. Advancing such a project is refused rather than
	// guessing where it is.
	ErrUnknownStage = errors.New("project status is not a stage of its service type")
	// ErrConcurrentModification is returned when the stored version moved
	// since the project was loaded.
	ErrConcurrentModification = errors.New("project was modified by another request")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
