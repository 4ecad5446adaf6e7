package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ErrNotFound builds a 404 error.
func ErrNotFound(message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, ErrorCode: "not_found", Message: message}
}

// ErrInternal builds a 500 error.
func ErrInternal(err error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, ErrorCode: "internal_error", Message: err.Error()}
}
