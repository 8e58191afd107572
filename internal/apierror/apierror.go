// Package apierror provides the standardized error envelope for the API.
// All 4xx/5xx responses go through this package so clients always receive
// a status code, a short status name, and a message, never stack traces
// or raw database errors.
package apierror

import "net/http"

// APIError is the canonical error envelope.
type APIError struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func New(status int, msg string) *APIError {
	return &APIError{Status: status, Error: http.StatusText(status), Message: msg}
}

// FieldError is one entry of the per-field detail list on validation errors.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError extends the envelope with a per-field detail list.
type ValidationError struct {
	APIError
	Fields []FieldError `json:"fields"`
}

func NewValidation(fields []FieldError) *ValidationError {
	return &ValidationError{
		APIError: *New(http.StatusUnprocessableEntity, "Error de validación"),
		Fields:   fields,
	}
}
