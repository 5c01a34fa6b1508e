package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/logger"
	"github.com/utafrali/SagaParticipants/pkg/validator"
)

// Response is the error envelope shared by all participants.
type Response struct {
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResource writes v keyed by its resource name, e.g. {"payment": {...}}.
func WriteResource(w http.ResponseWriter, status int, resource string, v any) {
	WriteJSON(w, status, map[string]any{resource: v})
}

// WriteError writes a standardized error response based on the error type.
// Only non-transient 500s are logged, since injected failures are expected
// traffic. The request-scoped logger from context is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status, body := ErrorFor(err)
	body.RequestID = logger.CorrelationIDFromContext(r.Context())

	if status == http.StatusInternalServerError && !errors.Is(err, apperrors.ErrTransient) {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

// ErrorFor maps err to a status code and error body. Validation failures
// carry per-field messages; AppError values carry their own code and status.
// The Kafka reply path shares this mapping with WriteError.
func ErrorFor(err error) (int, *ErrorResponse) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, &ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, &ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	}

	status := apperrors.HTTPStatus(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return status, &ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return status, &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, apperrors.ErrTransient):
		return status, &ErrorResponse{Code: "TRANSIENT_FAILURE", Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnsupported):
		return status, &ErrorResponse{Code: "UNSUPPORTED", Message: err.Error()}
	case errors.Is(err, apperrors.ErrCircuitOpened):
		return status, &ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()}
	}
	return status, &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
}
