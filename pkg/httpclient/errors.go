package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
)

// DownstreamErrorResponse mirrors the error envelope every participant
// writes: {"error":{"code","message","request_id"}}.
type DownstreamErrorResponse struct {
	Error *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx participant response and
// maps it back onto the saga error taxonomy. The body is consumed and closed.
func ParseResponseError(resp *http.Response, participant string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", participant, resp.StatusCode, err)
	}

	code, message := "", string(bodyBytes)
	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		code, message = downstream.Error.Code, downstream.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapDownstreamError(resp.StatusCode, code, message, participant)
}

// mapDownstreamError translates a participant status code into an AppError
// that keeps its retry semantics: 5xx stays retryable, 4xx stays terminal.
func mapDownstreamError(status int, code, message, participant string) error {
	qualified := fmt.Sprintf("%s: %s", participant, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: qualified, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusMethodNotAllowed:
		return apperrors.Unsupported(qualified)
	case status >= 500:
		return apperrors.TransientFailure(qualified, status)
	default:
		if code == "" {
			code = "UNEXPECTED_STATUS"
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

// IsClientError reports a 4xx status. A coordinator should not compensate a
// step that was rejected as a client error, since nothing was applied.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
