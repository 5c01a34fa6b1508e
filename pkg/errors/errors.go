package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the participant error taxonomy.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTransient     = errors.New("transient failure")
	ErrInternal      = errors.New("internal error")
	ErrUnsupported   = errors.New("operation not supported")
	ErrCircuitOpened = errors.New("participant circuit open")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a referenced resource the participant does not know.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error. Malformed saga requests are terminal:
// re-sending the same body will fail the same way.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// TransientFailure creates a retryable failure reported with the given
// status (500 or 503). A status outside the 5xx range falls back to 500.
func TransientFailure(message string, status int) *AppError {
	if status < 500 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Code:    "TRANSIENT_FAILURE",
		Message: message,
		Status:  status,
		Err:     ErrTransient,
	}
}

// Unsupported creates a 405 error for an action the participant does not offer.
func Unsupported(message string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED",
		Message: message,
		Status:  http.StatusMethodNotAllowed,
		Err:     ErrUnsupported,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsRetryable reports whether a coordinator may retry the call that produced err.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrCircuitOpened)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrCircuitOpened):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
