// Package errors provides a structured error system for blast-db-configuration
// with error codes, categories, and context.
//
// The resolution pipeline needs to tell "this organism has no published
// assembly" apart from "the archive hung up on us" without ever inspecting
// error message text, so every failure surfaced by the NCBI layers carries
// one of the codes below.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Is and As re-export the standard library helpers so callers need a single
// errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// ErrorCode represents a structured error code for resolution operations.
type ErrorCode string

const (
	// Configuration errors
	ErrCodeInvalidConfig        ErrorCode = "INVALID_CONFIG"
	ErrCodeInvalidOrganismGroup ErrorCode = "INVALID_ORGANISM_GROUP"

	// Transport errors
	ErrCodeConnectionFailed  ErrorCode = "CONNECTION_FAILED"
	ErrCodeConnectionTimeout ErrorCode = "CONNECTION_TIMEOUT"
	ErrCodeAuthFailed        ErrorCode = "AUTH_FAILED"

	// Archive errors
	ErrCodePathNotFound        ErrorCode = "PATH_NOT_FOUND"
	ErrCodeListingFailed       ErrorCode = "LISTING_FAILED"
	ErrCodeManifestUnavailable ErrorCode = "MANIFEST_UNAVAILABLE"

	// Taxonomy errors
	ErrCodeTaxonomyLookup    ErrorCode = "TAXONOMY_LOOKUP"
	ErrCodeTaxonomyAmbiguous ErrorCode = "TAXONOMY_AMBIGUOUS"

	// Output errors
	ErrCodeOutputWrite ErrorCode = "OUTPUT_WRITE"

	// Internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorCategory represents the general category of an error.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryTransport     ErrorCategory = "transport"
	CategoryArchive       ErrorCategory = "archive"
	CategoryTaxonomy      ErrorCategory = "taxonomy"
	CategoryOutput        ErrorCategory = "output"
	CategoryInternal      ErrorCategory = "internal"
)

// Error represents a structured error with context and metadata.
type Error struct {
	Code     ErrorCode     `json:"code"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`

	Context   map[string]string `json:"context,omitempty"`
	Cause     error             `json:"-"` // Not serialized to avoid circular refs
	Timestamp time.Time         `json:"timestamp"`

	Component string `json:"component,omitempty"`
	Operation string `json:"operation,omitempty"`

	// Retryable hints to the organism-level caller whether another attempt
	// could plausibly succeed; the resolution layers never act on it.
	Retryable bool `json:"retryable"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Component != "" {
		if e.Operation != "" {
			return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error wrapping compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error (for errors.Is compatibility).
func (e *Error) Is(target error) bool {
	if targetErr, ok := target.(*Error); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// String returns a detailed string representation for logging.
func (e *Error) String() string {
	parts := []string{
		fmt.Sprintf("Code=%s", e.Code),
		fmt.Sprintf("Category=%s", e.Category),
		fmt.Sprintf("Message=%q", e.Message),
	}
	if e.Component != "" {
		parts = append(parts, fmt.Sprintf("Component=%s", e.Component))
	}
	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("Operation=%s", e.Operation))
	}
	if e.Retryable {
		parts = append(parts, "Retryable=true")
	}
	for k, v := range e.Context {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause=%q", e.Cause.Error()))
	}
	return fmt.Sprintf("Error{%s}", strings.Join(parts, ", "))
}

// New creates a new structured error with default values for the code.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
		Retryable: IsRetryableByDefault(code),
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new structured error wrapping an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// GetCategory determines the category based on the error code.
func GetCategory(code ErrorCode) ErrorCategory {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID_"):
		return CategoryConfiguration
	case strings.HasPrefix(codeStr, "CONNECTION_") || strings.HasPrefix(codeStr, "AUTH_"):
		return CategoryTransport
	case strings.HasPrefix(codeStr, "PATH_") || strings.HasPrefix(codeStr, "LISTING_") ||
		strings.HasPrefix(codeStr, "MANIFEST_"):
		return CategoryArchive
	case strings.HasPrefix(codeStr, "TAXONOMY_"):
		return CategoryTaxonomy
	case strings.HasPrefix(codeStr, "OUTPUT_"):
		return CategoryOutput
	default:
		return CategoryInternal
	}
}

// IsRetryableByDefault determines if an error is retryable by default.
func IsRetryableByDefault(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		ErrCodeConnectionFailed:  true,
		ErrCodeConnectionTimeout: true,
		ErrCodeAuthFailed:        true,
	}
	return retryableCodes[code]
}

// WithContext adds contextual information to an error.
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithComponent sets the component for an error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithOperation sets the operation for an error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// GetCode extracts the error code from any error. Plain errors report
// INTERNAL_ERROR; nil reports an empty code.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ErrCodeInternalError
}

// IsCode reports whether err carries the given error code anywhere in its
// chain.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsNotFound reports whether err represents an expected-absent remote path.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodePathNotFound)
}

// IsTransport reports whether err represents a session-level transport
// failure (connect, timeout, or authentication).
func IsTransport(err error) bool {
	switch GetCode(err) {
	case ErrCodeConnectionFailed, ErrCodeConnectionTimeout, ErrCodeAuthFailed:
		return true
	}
	return false
}
