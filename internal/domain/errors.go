package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a pipeline failure for callers and for the job log.
type ErrorCode string

const (
	ErrInputValidation     ErrorCode = "input_validation"
	ErrEnvironmentConfig   ErrorCode = "environment_config"
	ErrChannelNotFound     ErrorCode = "channel_not_found"
	ErrTokenExpired        ErrorCode = "token_expired"
	ErrNoRefreshToken      ErrorCode = "no_refresh_token"
	ErrInvalidRefreshToken ErrorCode = "invalid_refresh_token"
	ErrOwnershipViolation  ErrorCode = "ownership_violation"
	ErrExternalService     ErrorCode = "external_service"
	ErrSchemaParse         ErrorCode = "schema_parse"
	ErrInsufficientCredits ErrorCode = "insufficient_credits"
	ErrPersistence         ErrorCode = "persistence"
)

// PipelineError is a classified, optionally retryable error. Transient
// transport failures, 5xx responses, and rate limits are tagged retryable;
// auth and validation failures are not. Validation and config errors are
// raised before any external call is made.
type PipelineError struct {
	Code      ErrorCode
	Retryable bool
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewError creates a non-retryable classified error.
func NewError(code ErrorCode, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err with a classification, preserving the cause chain.
func WrapError(code ErrorCode, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewRetryable creates a retryable external-service error.
func NewRetryable(code ErrorCode, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Code: code, Retryable: true, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the classification of err, or empty if unclassified.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsRetryable reports whether err is tagged as retryable. Unclassified
// errors are treated as non-retryable.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
