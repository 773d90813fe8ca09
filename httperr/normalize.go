package httperr

import (
	"errors"
	"net/http"
)

// StatusCarrier is implemented by errors that declare their own HTTP
// status. Errors from foreign packages can satisfy it without
// depending on this one.
type StatusCarrier interface {
	error
	HTTPStatus() int
}

// validationBody is the wire shape for validation failures.
type validationBody struct {
	Error  string  `json:"error"`
	Issues []Issue `json:"issues"`
}

// errorBody is the wire shape for declared HTTP errors.
type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

const genericMessage = "An error occurred while processing the request"

// Normalize maps any error to a status code and a serializable body.
// Validation failures become 400 with source-tagged issues, declared
// HTTP errors keep their status with expose gating, and everything
// else becomes a 500 Problem Details body. The original error is never
// placed in the body; callers log it separately.
func Normalize(err error) (int, any) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, validationBody{
			Error:  "ValidationError",
			Issues: ve.Issues,
		}
	}

	var he *HTTPError
	if errors.As(err, &he) {
		body := errorBody{}
		body.Error.Code = he.Code
		if he.Expose {
			body.Error.Message = he.Message
			body.Error.Details = he.Details()
		} else {
			body.Error.Message = genericMessage
		}
		return he.Status, body
	}

	var sc StatusCarrier
	if errors.As(err, &sc) {
		body := errorBody{}
		body.Error.Code = http.StatusText(sc.HTTPStatus())
		body.Error.Message = genericMessage
		return sc.HTTPStatus(), body
	}

	return http.StatusInternalServerError, ProblemDetails{
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
}
