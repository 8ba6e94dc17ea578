package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies failures talking to the marketplace
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypePurchase    ErrorType = "purchase"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is an API error with type information. Code holds the HTTP status
// for transport-level errors and the marketplace error code for purchase errors.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error
func New(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that keeps err in its chain
func Wrap(t ErrorType, code int, err error, msg string) *Error {
	return &Error{Type: t, Code: code, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries an *Error of the given type
func Is(err error, t ErrorType) bool {
	var apiErr *Error
	return stderrors.As(err, &apiErr) && apiErr.Type == t
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypePurchase:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0:
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
