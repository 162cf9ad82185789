package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotTracked indicates the file is outside a git repository or not under version control
	NotTracked ErrorCode = "NOT_TRACKED"
	// NoHistory indicates the file has no revision history to attribute
	NoHistory ErrorCode = "NO_HISTORY"
	// Timeout indicates the scoring oracle exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// OracleFailed indicates any other scoring oracle failure
	OracleFailed ErrorCode = "ORACLE_FAILED"
	// ConfigInvalid indicates the configuration could not be loaded or validated
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExpertError is a coded error. Errors produced by a scoring oracle carry one
// of the oracle codes (see IsOracleError).
type ExpertError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an ExpertError with the default suggested fixes for code.
func New(code ErrorCode, message string, cause error) *ExpertError {
	return &ExpertError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *ExpertError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ExpertError) Unwrap() error {
	return e.cause
}

// Is matches another ExpertError by code, so errors.Is(err, &ExpertError{Code: NoHistory})
// works without comparing messages.
func (e *ExpertError) Is(target error) bool {
	t, ok := target.(*ExpertError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first ExpertError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var e *ExpertError
	if stderrors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// IsOracleError reports whether err is a scoring oracle failure.
func IsOracleError(err error) bool {
	switch CodeOf(err) {
	case NotTracked, NoHistory, Timeout, OracleFailed:
		return true
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NotTracked: {
		{Command: "git status", Description: "Verify the file is tracked in a git repository"},
	},
	NoHistory: {
		{Command: "git log --follow -- <file>", Description: "Check the file has committed history"},
	},
	Timeout: {
		{Description: "Raise oracle.timeoutMs in .expertfinder/config.json"},
	},
	ConfigInvalid: {
		{Command: "expertfinder config show", Description: "Inspect the effective configuration"},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
