package errors

import (
	stderrors "errors"
	"fmt"
)

// LayerError is the structured error type for layer.
// It carries a code, a category and an optional hint for the user.
type LayerError struct {
	// Code is the unique error code (e.g., "ERR_407_PATH_OUTSIDE_REPO").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Repository, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *LayerError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LayerError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with LayerError.
func (e *LayerError) Is(target error) bool {
	if t, ok := target.(*LayerError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *LayerError) WithDetail(key, value string) *LayerError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *LayerError) WithSuggestion(suggestion string) *LayerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LayerError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *LayerError {
	return &LayerError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a LayerError from an existing error.
// The error's message becomes the LayerError message.
func Wrap(code string, err error) *LayerError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *LayerError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *LayerError {
	return New(ErrCodeFileWrite, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *LayerError {
	return New(ErrCodeInvalidInput, message, cause)
}

// ScopeError reports a path that lies outside the repository root.
func ScopeError(path string) *LayerError {
	return New(ErrCodeOutsideRepo, fmt.Sprintf("path '%s' is outside the repository", path), nil).
		WithDetail("path", path).
		WithSuggestion("Run layer from inside the repository and pass paths beneath its root")
}

// RepositoryError reports that git state (the index, the work tree) could not be read.
func RepositoryError(message string, cause error) *LayerError {
	return New(ErrCodeRepositoryUnavailable, message, cause).
		WithSuggestion("Run layer inside a git work tree, or 'git init' first")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *LayerError {
	return New(ErrCodeInternal, message, cause)
}

// IsScopeError reports whether err (or anything it wraps) is a ScopeError.
func IsScopeError(err error) bool {
	return GetCode(err) == ErrCodeOutsideRepo
}

// IsRepositoryError reports whether err is a repository error of any code.
func IsRepositoryError(err error) bool {
	return GetCategory(err) == CategoryRepository
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var le *LayerError
	if stderrors.As(err, &le) {
		return le.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a LayerError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var le *LayerError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category from a LayerError in the chain.
// Returns empty string if there is none.
func GetCategory(err error) Category {
	var le *LayerError
	if stderrors.As(err, &le) {
		return le.Category
	}
	return ""
}
