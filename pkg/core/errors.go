package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid, missing or unusable credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeBadResponse indicates a response that could not be decoded or lacks a required field.
	ErrorTypeBadResponse
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"BAD_RESPONSE",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when circuit breaker is open.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNoCredentials is returned when no API credentials are configured.
	ErrNoCredentials = errors.New("no credentials configured")
)

// ExchangeError represents a structured error returned from an exchange.
// It provides detailed context for debugging and error handling.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, zero when no response was involved.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific or client error code.
	Code string `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// RawError contains the original error response for debugging.
	RawError any `json:"raw_error,omitempty"`
	// Exchange identifies which exchange returned this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`

	err error
}

// Error implements the error interface for ExchangeError.
// It returns a formatted string with exchange name, error type, status code, and message.
func (e *ExchangeError) Error() string {
	msg := e.Message
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *ExchangeError) Unwrap() error {
	return e.err
}

// WithCode returns the ExchangeError with the specified error code.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// WithCause attaches the underlying error so errors.Is and errors.As can reach it.
func (e *ExchangeError) WithCause(err error) *ExchangeError {
	e.err = err
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewExchangeErrorWithCode creates a new ExchangeError including an exchange-specific error code.
// The timestamp is automatically set to the current time.
func NewExchangeErrorWithCode(exchange string, errorType ErrorType, statusCode int, code, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewMissingFieldError reports a response that decoded fine but lacks a required field.
func NewMissingFieldError(exchange, field string) *ExchangeError {
	return NewExchangeError(exchange, ErrorTypeBadResponse, 0,
		fmt.Sprintf("missing field %q", field)).WithCode(ErrCodeMissingField)
}

// NewDecodeError reports a response body that is not valid JSON for the expected shape.
func NewDecodeError(exchange string, statusCode int, err error) *ExchangeError {
	return NewExchangeError(exchange, ErrorTypeBadResponse, statusCode,
		"decode response").WithCode(ErrCodeDecode).WithCause(err)
}

func asExchangeError(err error) (*ExchangeError, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNetworkError returns true if the error is a network connectivity issue.
func IsNetworkError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeNetwork
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeRateLimit
}

// IsAuthenticationError returns true if the error is an authentication or signing failure.
// Authentication errors require credential validation and are not retryable.
func IsAuthenticationError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeAuthentication
}

// IsBadResponseError returns true if the response could not be decoded or was missing a field.
func IsBadResponseError(err error) bool {
	e, ok := asExchangeError(err)
	return ok && e.Type == ErrorTypeBadResponse
}

// IsAPIError returns true if the exchange itself rejected the request through its status envelope.
func IsAPIError(err error) bool {
	e, ok := asExchangeError(err)
	if !ok {
		return false
	}
	switch e.Type {
	case ErrorTypeBadResponse, ErrorTypeNetwork, ErrorTypeTimeout:
		return false
	}
	return e.Code != "" && !isClientCode(ErrorCode(e.Code))
}

// IsShapeError returns true if a decoded response lacked a required field.
func IsShapeError(err error) bool {
	return IsErrorCode(err, ErrCodeMissingField)
}

// IsDecodeError returns true if a response body could not be decoded.
func IsDecodeError(err error) bool {
	return IsErrorCode(err, ErrCodeDecode)
}
