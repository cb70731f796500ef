package core

import "errors"

// ErrorCode represents a client-side error identifier.
// Error codes provide a stable, machine-readable way to identify specific error conditions.
// Exchange-reported codes are stored verbatim in ExchangeError.Code instead.
type ErrorCode string

// Error code constants define standardized error identifiers across all exchanges.
const (
	// ErrCodeDecode indicates a response body that is not valid JSON for the expected shape.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
	// ErrCodeMissingField indicates an otherwise valid response lacking a required field.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodePageLimit indicates a cursor listing that did not terminate within the page ceiling.
	ErrCodePageLimit ErrorCode = "PAGE_LIMIT_EXCEEDED"

	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Client state errors
	ErrCodeClientClosed ErrorCode = "CLIENT_CLOSED"

	// Circuit breaker errors
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"

	// Authentication errors
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrCodeSigning       ErrorCode = "SIGNING_FAILED"

	// Unsupported operation
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_METHOD"
)

var clientCodes = map[ErrorCode]struct{}{
	ErrCodeDecode:         {},
	ErrCodeMissingField:   {},
	ErrCodePageLimit:      {},
	ErrCodeInvalidConfig:  {},
	ErrCodeClientClosed:   {},
	ErrCodeCircuitBreaker: {},
	ErrCodeNoCredentials:  {},
	ErrCodeSigning:        {},
	ErrCodeUnsupported:    {},
}

func isClientCode(code ErrorCode) bool {
	_, ok := clientCodes[code]
	return ok
}

// IsErrorCode checks if the error matches the specified error code.
// It extracts the exchange error and compares its code field against the provided ErrorCode.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
