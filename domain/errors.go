package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code written into every error envelope.
type ErrorCode string

const (
	ErrCodeMissingAPIKey     ErrorCode = "missing_api_key"
	ErrCodeMissingOriginHost ErrorCode = "missing_origin_host"
	ErrCodeInvalidOriginHost ErrorCode = "invalid_origin_host"
	ErrCodeInvalid           ErrorCode = "invalid_request"
	ErrCodeUpstream          ErrorCode = "upstream_error"
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeInternal          ErrorCode = "internal_error"
)

// Error represents a domain-level error.
// Status is only set for upstream errors, whose status code is relayed as is.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Status  int
	Details interface{}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamError describes a non-2xx answer from the shipping platform.
func NewUpstreamError(status int, message string, details interface{}) *Error {
	return &Error{
		Code:    ErrCodeUpstream,
		Message: message,
		Status:  status,
		Details: details,
	}
}

// Common domain errors.
var (
	ErrMissingAPIKey     = NewError(ErrCodeMissingAPIKey, "server is missing EASYPOST_API_KEY")
	ErrMissingOriginHost = NewError(ErrCodeMissingOriginHost, "server is missing ORIGIN_HOST")
	ErrInvalidOriginHost = NewError(ErrCodeInvalidOriginHost, "ORIGIN_HOST must be a bare host (no scheme, path or whitespace)")
	ErrMissingUserID     = NewError(ErrCodeInvalid, "Missing required field: user_id")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsError extracts the domain error from a chain, if any.
func AsError(err error) (*Error, bool) {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr, true
	}
	return nil, false
}
