package common

import (
	"fmt"
	"strings"
)

// ValidationError describes rejected user input.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConfigurationError lists the settings that must be filled in before a
// remote operation can run.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing settings: " + strings.Join(e.Missing, ", ")
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NotFoundError reports a lookup by identifier that matched nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// SourceUnavailableError wraps the reason a data source could not be read.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
