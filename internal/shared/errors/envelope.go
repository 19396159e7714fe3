// Package errors renders API responses in the uniform { code, message, data } envelope.
package errors

import (
	"net/http"
)

// CodeOK is the envelope code of every successful response.
const CodeOK = http.StatusOK

// Envelope wraps every response body. Errors carry the HTTP status as code and a nil data.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// APIError is an error with the HTTP status and client-facing message it renders as.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Message
}

// WithMessage returns a copy with the given client-facing message.
func (e APIError) WithMessage(message string) APIError {
	if message != "" {
		e.Message = message
	}
	return e
}

// Envelope renders the error body.
func (e APIError) Envelope() Envelope {
	return Envelope{Code: e.Status, Message: e.Message}
}

// Pre-defined error templates for common scenarios.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = APIError{Status: http.StatusNotFound, Message: "resource not found"}

	// ErrValidation indicates the request failed validation.
	ErrValidation = APIError{Status: http.StatusBadRequest, Message: "validation failed"}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = APIError{Status: http.StatusBadRequest, Message: "bad request"}

	// ErrInvalidState indicates the resource cannot perform the action in its current state.
	ErrInvalidState = APIError{Status: http.StatusBadRequest, Message: "invalid state"}

	// ErrConflict indicates a conflict with a concurrent or earlier request.
	ErrConflict = APIError{Status: http.StatusConflict, Message: "conflict"}

	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = APIError{Status: http.StatusUnauthorized, Message: "unauthorized"}

	// ErrForbidden indicates the caller may not perform the action.
	ErrForbidden = APIError{Status: http.StatusForbidden, Message: "forbidden"}

	// ErrInternal hides unexpected faults from clients.
	ErrInternal = APIError{Status: http.StatusInternalServerError, Message: "internal server error"}
)

// Success builds the envelope of a successful response.
func Success(message string, data any) Envelope {
	if message == "" {
		message = "success"
	}
	return Envelope{Code: CodeOK, Message: message, Data: data}
}
