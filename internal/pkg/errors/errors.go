package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrExchangeFailed  = errors.New("token exchange failed")
	ErrProfileFetch    = errors.New("profile fetch failed")
	ErrInternal        = errors.New("internal server error")
)

// RequestError is a per-request failure that the handler layer converts
// into an HTTP response. It never crashes the process; startup failures
// are handled separately by exiting in main.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// BadRequest builds a 400 RequestError.
func BadRequest(message string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized builds a 401 RequestError.
func Unauthorized(message string, err error) *RequestError {
	return &RequestError{Status: http.StatusUnauthorized, Message: message, Err: err}
}

// Internal builds a 500 RequestError wrapping a downstream failure.
func Internal(message string, err error) *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// HTTPStatus maps an error to the status code the gateway responds with.
// Token and authentication failures are 401, missing records 404,
// everything else is a downstream 500.
func HTTPStatus(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
