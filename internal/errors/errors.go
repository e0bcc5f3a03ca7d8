// Package errors provides structured error types and recovery suggestions.
//
// Purpose:
//
//	Define consistent error types across all CLI commands with recovery suggestions
//	and exit codes, so scripts driving ctfd-admin can branch on the outcome.
//
// Exit codes:
//   - 0: success
//   - 1: general failure, including missing positional arguments
//   - 2: validation or configuration failure
//   - 3: CTFd instance unreachable
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a standardized error code.
type ErrorCode string

const (
	// ErrCodeServiceUnavailable indicates the CTFd instance could not be reached.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConfig indicates a missing or invalid URL or token.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeValidationFailed indicates input validation failure.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeOperationFailed indicates a general operation failure.
	ErrCodeOperationFailed ErrorCode = "OPERATION_FAILED"
	// ErrCodeUsage indicates incorrect command usage.
	ErrCodeUsage ErrorCode = "USAGE_ERROR"
)

// CLIError represents a structured CLI error with recovery suggestions.
type CLIError struct {
	Code       ErrorCode
	Message    string
	Suggestion string
	Details    string
	ExitCode   int
	Err        error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Code == ErrCodeUsage {
		// Usage text is printed verbatim.
		return e.Details
	}
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Suggestion != "" {
		msg += "\n\nSuggestion: " + e.Suggestion
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewServiceUnavailableError creates an error for an unreachable CTFd instance.
func NewServiceUnavailableError(endpoint string, cause error) *CLIError {
	return &CLIError{
		Code:       ErrCodeServiceUnavailable,
		Message:    "CTFd is unavailable",
		Details:    fmt.Sprintf("Endpoint: %s", endpoint),
		Suggestion: fmt.Sprintf("Verify CTFd is running and accessible at %s. Check network connectivity.", endpoint),
		ExitCode:   3,
		Err:        cause,
	}
}

// NewConfigError creates an error for missing or invalid connection settings.
func NewConfigError(cause error) *CLIError {
	details := "missing configuration"
	if cause != nil {
		details = cause.Error()
	}
	return &CLIError{
		Code:       ErrCodeConfig,
		Message:    "Invalid configuration",
		Details:    details,
		Suggestion: "Set --url and --token, the CTFD_ADMIN_CTFD_URL and CTFD_ADMIN_AUTH_TOKEN environment variables, or ~/.ctfd-admin/config.yaml.",
		ExitCode:   2,
		Err:        cause,
	}
}

// NewValidationError creates an error for validation failures.
func NewValidationError(message, suggestion string) *CLIError {
	return &CLIError{
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		Details:    message,
		Suggestion: suggestion,
		ExitCode:   2,
	}
}

// NewOperationError creates an error for operation failures.
func NewOperationError(message, suggestion string, cause error) *CLIError {
	return &CLIError{
		Code:       ErrCodeOperationFailed,
		Message:    "Operation failed",
		Details:    message,
		Suggestion: suggestion,
		ExitCode:   1,
		Err:        cause,
	}
}

// NewUsageError creates an error for missing or extra positional arguments.
// The usage line is printed as-is and the process exits with status 1.
func NewUsageError(usage string) *CLIError {
	return &CLIError{
		Code:     ErrCodeUsage,
		Message:  "Incorrect usage",
		Details:  "Usage: " + usage,
		ExitCode: 1,
	}
}

// ExitCode returns the exit code carried by err, 1 for any other error and 0
// for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return 1
}
