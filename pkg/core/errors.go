// Package core provides the shared types for appium-pilot: the error
// taxonomy, case statuses, run results, and device records.
package core

import "fmt"

// ErrorCategory classifies a failure for reporting and for callers that
// need to tell infrastructure problems apart from test outcomes.
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota
	ErrCategoryConfig                  // configuration missing or unparsable
	ErrCategoryTool                    // external tool missing or exited nonzero
	ErrCategorySession                 // automation session lifecycle failure
	ErrCategoryElement                 // element lookup or interaction failure
	ErrCategoryAssertion               // harness assertion failure
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConfig:
		return "config"
	case ErrCategoryTool:
		return "tool"
	case ErrCategorySession:
		return "session"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryAssertion:
		return "assertion"
	default:
		return "unknown"
	}
}

// ExecutionError is a structured error with a category and machine-readable
// code. A "tool not found" error is distinguishable from "tool ran and
// found nothing" by matching against the predefined sentinels with
// errors.Is.
type ExecutionError struct {
	Category ErrorCategory
	Code     string // machine-readable: tool_not_found, wait_timeout, ...
	Message  string // human-readable
	Cause    error  // underlying error, if any
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the same predefined error (matched by
// category and code), so wrapped copies still compare equal.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause returns a copy of the error carrying the given cause.
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Cause:    e.Cause,
	}
}

// Predefined errors.
var (
	// Tool errors
	ErrToolNotFound = &ExecutionError{
		Category: ErrCategoryTool,
		Code:     "tool_not_found",
		Message:  "external tool not found",
	}
	ErrToolFailed = &ExecutionError{
		Category: ErrCategoryTool,
		Code:     "tool_failed",
		Message:  "external tool exited with an error",
	}

	// Session errors
	ErrNoSession = &ExecutionError{
		Category: ErrCategorySession,
		Code:     "no_session",
		Message:  "no active automation session",
	}
	ErrSessionStart = &ExecutionError{
		Category: ErrCategorySession,
		Code:     "session_start",
		Message:  "failed to start automation session",
	}

	// Element errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrElementNotVisible = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_visible",
		Message:  "element not visible",
	}
	ErrWaitTimeout = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	// Assertion errors
	ErrAssertionFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "assertion_failed",
		Message:  "assertion failed",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
