// Package errors defines the typed error taxonomy shared by the galaxy,
// camera and scene packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfiguration indicates invalid generation or camera parameters
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeExhaustedLOD indicates a non-finite LOD distance signal
	ErrorTypeExhaustedLOD ErrorType = "exhausted_lod"
	// ErrorTypeTransitionMisuse indicates a trigger while a flight is in progress
	ErrorTypeTransitionMisuse ErrorType = "transition_misuse"
	// ErrorTypeExternal indicates a failure in an external collaborator (store, terminal)
	ErrorTypeExternal ErrorType = "external"
	// ErrorTypeInternal indicates an unexpected failure
	ErrorTypeInternal ErrorType = "internal"
)

// AppError is the base error type for application errors
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Configurationf creates a configuration error with formatting
func Configurationf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapConfiguration wraps an error as a configuration error
func WrapConfiguration(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Err:     err,
	}
}

// ExhaustedLOD creates an exhausted LOD error for a distance that matched no tier
func ExhaustedLOD(distance float64) error {
	return &AppError{
		Type:    ErrorTypeExhaustedLOD,
		Message: fmt.Sprintf("distance %v is not finite, using coarsest tier", distance),
	}
}

// TransitionMisuse creates a transition misuse error
func TransitionMisuse(message string) error {
	return &AppError{
		Type:    ErrorTypeTransitionMisuse,
		Message: message,
	}
}

// WrapExternal wraps an error as an external collaborator error
func WrapExternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Internalf creates an internal error with formatting
func Internalf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// GetType returns the error type of an error
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return err != nil && GetType(err) == ErrorTypeConfiguration
}

// IsExhaustedLOD reports whether err is an exhausted LOD error.
func IsExhaustedLOD(err error) bool {
	return err != nil && GetType(err) == ErrorTypeExhaustedLOD
}

// IsTransitionMisuse reports whether err is a transition misuse error.
func IsTransitionMisuse(err error) bool {
	return err != nil && GetType(err) == ErrorTypeTransitionMisuse
}
