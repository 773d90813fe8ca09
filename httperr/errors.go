// Package httperr defines the error taxonomy shared by the manifest
// builder and the runtime dispatcher, plus the normalizer that maps any
// failure to a status code and response body.
package httperr

import (
	"fmt"
	"maps"
	"net/http"
)

// Issue describes a single validation failure tied to a request source.
type Issue struct {
	Source  string `json:"source"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries one or more source-tagged issues and is
// always surfaced as a 400 response.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

// NewValidationError creates a ValidationError from the given issues.
func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", e.Issues[0].Source, e.Issues[0].Message)
	}
	return fmt.Sprintf("validation failed: %d issues", len(e.Issues))
}

// HTTPError is a declared, recoverable error with its own status code.
// Message and details reach the caller only when Expose is set.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Expose  bool
	details map[string]any
}

// NewHTTPError creates an HTTPError with the given status, code and message.
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
		details: make(map[string]any),
	}
}

// WithDetails attaches a detail entry to the error.
func (e *HTTPError) WithDetails(key string, value any) *HTTPError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Exposed marks the error message and details as safe to return to callers.
func (e *HTTPError) Exposed() *HTTPError {
	e.Expose = true
	return e
}

// Details returns a copy of the attached details.
func (e *HTTPError) Details() map[string]any {
	if len(e.details) == 0 {
		return nil
	}
	cp := make(map[string]any, len(e.details))
	maps.Copy(cp, e.details)
	return cp
}

func (e *HTTPError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// NewNotFoundError creates a 404 error for the named resource.
func NewNotFoundError(resource string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource)).Exposed()
}

// NewBadRequestError creates a 400 error with an exposable message.
func NewBadRequestError(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, "BAD_REQUEST", message).Exposed()
}

// NewConflictError creates a 409 error with an exposable message.
func NewConflictError(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, "CONFLICT", message).Exposed()
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string) *HTTPError {
	if message == "" {
		message = "Authentication required"
	}
	return NewHTTPError(http.StatusUnauthorized, "UNAUTHORIZED", message).Exposed()
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string) *HTTPError {
	if message == "" {
		message = "Access denied"
	}
	return NewHTTPError(http.StatusForbidden, "FORBIDDEN", message).Exposed()
}

// NewInternalError creates a 500 error whose message is never exposed.
func NewInternalError(message string) *HTTPError {
	if message == "" {
		message = "An internal error occurred"
	}
	return NewHTTPError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// ProblemDetails is the RFC 7807-shaped body used for uncaught failures.
type ProblemDetails struct {
	Type       string         `json:"type,omitempty"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}
