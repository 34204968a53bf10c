// Package errors provides standardized error handling for the retrieval orchestrator.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestInvalid  ErrorCode = "REQUEST_INVALID"
	ErrCodeSearchTimeout   ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeFetchJobTimeout ErrorCode = "FETCH_JOB_TIMEOUT"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Err carries the
// sentinel or upstream cause so errors.Is keeps working across the wrap.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Err       error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// FieldError carries field-level detail for request validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request is rejected before any work starts.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "request validation failed"
	}
	return fmt.Sprintf("request validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// NewRequestInvalidError creates a non-retryable validation error with field detail.
func NewRequestInvalidError(fields []FieldError) *StandardError {
	details := ""
	for i, f := range fields {
		if i > 0 {
			details += "; "
		}
		details += f.Field + ": " + f.Message
	}
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"fields": fields},
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search provider timeout error.
func NewSearchTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search provider call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchJobTimeoutError creates an error for a fetch job exceeding its timeout.
func NewFetchJobTimeoutError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchJobTimeout,
		Message:   "Fetch job timed out",
		Details:   jobID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected fault as an opaque failure. The wrapped
// detail is logged at the orchestrator boundary, never surfaced to the caller.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
