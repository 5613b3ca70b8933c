package errors

import (
	stderrors "errors"
	"fmt"
)

// Error type constants
const (
	ValidationError   = "VALIDATION_ERROR"
	CompileFailed     = "COMPILE_FAILED"
	Timeout           = "TIMEOUT"
	ExpectationFailed = "EXPECTATION_FAILED"
	FixtureError      = "FIXTURE_ERROR"
	ToolNotFound      = "TOOL_NOT_FOUND"
	CheckFailed       = "CHECK_FAILED"
	Cancelled         = "CANCELLED"
)

// RunError is a structured error reported alongside check results.
type RunError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	CheckID   string `json:"check_id,omitempty"`
	Detail    string `json:"detail,omitempty"` // toolchain diagnostics, captured output
	Retryable bool   `json:"retryable"`
	Hint      string `json:"hint,omitempty"`
}

func (e *RunError) Error() string {
	if e.CheckID != "" {
		return fmt.Sprintf("[%s] check %s: %s", e.Type, e.CheckID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func NewValidationError(msg, hint string) *RunError {
	return &RunError{Type: ValidationError, Message: msg, Hint: hint}
}

func NewCheckError(checkID, msg, hint string) *RunError {
	return &RunError{Type: CheckFailed, CheckID: checkID, Message: msg, Hint: hint}
}

// NewCompileError wraps a non-zero compiler exit with its diagnostic text.
func NewCompileError(source string, exitCode int, diagnostics string) *RunError {
	return &RunError{
		Type:    CompileFailed,
		Message: fmt.Sprintf("failed to compile %s (exit code %d)", source, exitCode),
		Detail:  diagnostics,
		Hint:    "Fix the compiler diagnostics and re-run",
	}
}

// NewTimeoutError reports a child process killed after exceeding its limit.
func NewTimeoutError(executable string, limit fmt.Stringer) *RunError {
	return &RunError{
		Type:      Timeout,
		Message:   fmt.Sprintf("%s did not exit within %s", executable, limit),
		Retryable: true,
		Hint:      "The program may be waiting for more input than was provided, or needs a longer --timeout",
	}
}

func NewExpectationError(checkID, expectation string) *RunError {
	return &RunError{Type: ExpectationFailed, CheckID: checkID, Message: expectation}
}

// IsType reports whether err is, or wraps, a RunError of the given type.
func IsType(err error, typ string) bool {
	var re *RunError
	if stderrors.As(err, &re) {
		return re.Type == typ
	}
	return false
}

// As is errors.As for RunError.
func As(err error) (*RunError, bool) {
	var re *RunError
	ok := stderrors.As(err, &re)
	return re, ok
}
