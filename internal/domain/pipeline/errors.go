package pipeline

import (
	"fmt"
	"strings"
)

// Error codes for pipeline operations.
const (
	ErrCodeStepDuplicate = "STEP_DUPLICATE"
	ErrCodeStepFailed    = "STEP_FAILED"
	ErrCodeLedgerFailed  = "LEDGER_FAILED"
	ErrCodeCancelled     = "RUN_CANCELLED"
)

// StepError reports a problem with a specific step.
type StepError struct {
	Code       string
	Message    string
	StepID     string
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	msg := e.Message
	if e.StepID != "" {
		msg = fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *StepError) Is(target error) bool {
	if t, ok := target.(*StepError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.StepID != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %v", e.Underlying)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// Sentinels for errors.Is matching by code.
var (
	ErrStepDuplicate = &StepError{Code: ErrCodeStepDuplicate}
	ErrStepFailed    = &StepError{Code: ErrCodeStepFailed}
	ErrLedgerFailed  = &StepError{Code: ErrCodeLedgerFailed}
	ErrCancelled     = &StepError{Code: ErrCodeCancelled}
)

func newDuplicateError(id StepID) *StepError {
	return &StepError{
		Code:       ErrCodeStepDuplicate,
		Message:    "step declared twice",
		StepID:     id.String(),
		Suggestion: "Step names must be unique; rename one of them.",
	}
}

func newStepFailedError(id StepID, err error) *StepError {
	return &StepError{
		Code:       ErrCodeStepFailed,
		Message:    "step failed",
		StepID:     id.String(),
		Suggestion: "Fix the cause and run again; completed steps will be skipped.",
		Underlying: err,
	}
}

func newLedgerError(id StepID, err error) *StepError {
	return &StepError{
		Code:       ErrCodeLedgerFailed,
		Message:    "completion ledger unavailable",
		StepID:     id.String(),
		Suggestion: "Check that the state directory is readable and writable.",
		Underlying: err,
	}
}
