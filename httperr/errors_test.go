package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessages(t *testing.T) {
	assert.Equal(t, "validation failed", NewValidationError().Error())

	one := NewValidationError(Issue{Source: "params", Path: "id", Message: "not an integer"})
	assert.Equal(t, "validation failed: params: not an integer", one.Error())

	many := NewValidationError(
		Issue{Source: "body", Path: "name", Message: "required"},
		Issue{Source: "query", Path: "limit", Message: "not a number"},
	)
	assert.Equal(t, "validation failed: 2 issues", many.Error())
}

func TestHTTPErrorDetails(t *testing.T) {
	err := NewHTTPError(http.StatusConflict, "CONFLICT", "already exists").
		WithDetails("id", 42)

	details := err.Details()
	assert.Equal(t, 42, details["id"])

	// Mutating the returned map must not leak back into the error.
	details["id"] = 99
	assert.Equal(t, 42, err.Details()["id"])
}

func TestConstructorExposure(t *testing.T) {
	assert.True(t, NewNotFoundError("pet").Expose)
	assert.True(t, NewBadRequestError("bad").Expose)
	assert.True(t, NewForbiddenError("").Expose)
	assert.False(t, NewInternalError("db down").Expose)
}

func TestNormalizeValidationError(t *testing.T) {
	issues := []Issue{{Source: "params", Path: "id", Message: "not an integer"}}
	status, body := Normalize(NewValidationError(issues...))

	require.Equal(t, http.StatusBadRequest, status)
	vb, ok := body.(validationBody)
	require.True(t, ok)
	assert.Equal(t, "ValidationError", vb.Error)
	assert.Equal(t, issues, vb.Issues)
}

func TestNormalizeExposedHTTPError(t *testing.T) {
	err := NewNotFoundError("pet 7")
	status, body := Normalize(err)

	require.Equal(t, http.StatusNotFound, status)
	eb, ok := body.(errorBody)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", eb.Error.Code)
	assert.Equal(t, "pet 7 not found", eb.Error.Message)
}

func TestNormalizeUnexposedHTTPErrorHidesMessage(t *testing.T) {
	err := NewInternalError("password for db leaked here")
	status, body := Normalize(err)

	require.Equal(t, http.StatusInternalServerError, status)
	eb, ok := body.(errorBody)
	require.True(t, ok)
	assert.Equal(t, genericMessage, eb.Error.Message)
	assert.NotContains(t, eb.Error.Message, "password")
}

func TestNormalizeWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewConflictError("duplicate"))
	status, _ := Normalize(wrapped)
	assert.Equal(t, http.StatusConflict, status)
}

type teapotError struct{}

func (teapotError) Error() string   { return "teapot" }
func (teapotError) HTTPStatus() int { return http.StatusTeapot }

func TestNormalizeStatusCarrier(t *testing.T) {
	status, body := Normalize(teapotError{})

	require.Equal(t, http.StatusTeapot, status)
	eb, ok := body.(errorBody)
	require.True(t, ok)
	assert.Equal(t, genericMessage, eb.Error.Message)
}

func TestNormalizeUnknownError(t *testing.T) {
	status, body := Normalize(errors.New("nil pointer dereference"))

	require.Equal(t, http.StatusInternalServerError, status)
	pd, ok := body.(ProblemDetails)
	require.True(t, ok)
	assert.Equal(t, "Internal Server Error", pd.Title)
	assert.Equal(t, http.StatusInternalServerError, pd.Status)
}
