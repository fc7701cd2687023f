package gemini

import (
	"encoding/json"
	"fmt"

	"ai-docstore-be/pkg/apperror"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	HTTPStatus int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: status %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("gemini: status %d, body %s", e.HTTPStatus, e.Body)
}

func (e *APIError) BackendStatus() string { return e.Status }

func (e *APIError) Kind() apperror.Kind {
	if e.HTTPStatus == 404 {
		return apperror.KindNotFound
	}
	return apperror.KindTransport
}

// NoResponseError means the request never produced an HTTP response.
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string {
	return "gemini: no response: " + e.Err.Error()
}

func (e *NoResponseError) Unwrap() error { return e.Err }

func (e *NoResponseError) Kind() apperror.Kind { return apperror.KindNoResponse }

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{HTTPStatus: statusCode, Body: string(body)}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Status = env.Error.Status
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
