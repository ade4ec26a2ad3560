package timeapi

import (
	"errors"
	"net/http"
)

// Error codes for the time API.
const (
	ErrCodeInvalidTimezone  = "INVALID_TIMEZONE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Client-facing messages. These are part of the response contract.
const (
	MessageInvalidTimezone = "Invalid timezone format. Use format '+/-HH:MM'"
	MessageInternalError   = "Internal server error"
)

var (
	// ErrInvalidTimezone is returned for a malformed or out-of-range offset.
	ErrInvalidTimezone = &APIError{Code: ErrCodeInvalidTimezone, Message: MessageInvalidTimezone}
	// ErrInternal hides the cause of an unexpected failure from clients.
	ErrInternal = &APIError{Code: ErrCodeInternalError, Message: MessageInternalError}
)

// APIError represents an API error with a specific code.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusFor maps an error code to an HTTP status code.
func StatusFor(code string) int {
	switch code {
	case ErrCodeInvalidTimezone:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// MapError returns the APIError to present for err. Anything that is not an
// APIError becomes ErrInternal.
func MapError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
