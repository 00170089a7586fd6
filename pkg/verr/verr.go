package verr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error code returned to API clients.
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Account errors
	ErrCodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailNotVerified   ErrorCode = "EMAIL_NOT_VERIFIED"

	// Verification errors
	ErrCodeTokenInvalid      ErrorCode = "TOKEN_INVALID"
	ErrCodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeMailUnavailable   ErrorCode = "MAIL_UNAVAILABLE"
)

// Error is a structured error carrying a code, a human-readable message,
// optional details rendered into the response body, and a wrapped cause.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetDetails extracts the details from an error, nil when not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes.
// Duplicate email is reported as 400 rather than 409 so the registration
// form treats it like any other input problem.
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeAlreadyExists, ErrCodeEmailExists:
		return http.StatusBadRequest

	case ErrCodeInvalidCredentials:
		return http.StatusUnauthorized

	case ErrCodeEmailNotVerified:
		return http.StatusForbidden

	case ErrCodeNotFound, ErrCodeTokenInvalid:
		return http.StatusNotFound

	case ErrCodeTokenExpired:
		return http.StatusGone

	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	case ErrCodeMailUnavailable:
		return http.StatusServiceUnavailable

	case ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// InvalidInput creates an "invalid input" error for a named field
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}

// RateLimited creates a "rate limit exceeded" error carrying the remaining wait
func RateLimited(retryAfterMinutes int) *Error {
	return New(ErrCodeRateLimitExceeded, "too many verification emails sent, please try again later").
		WithDetail("retry_after_minutes", retryAfterMinutes)
}
