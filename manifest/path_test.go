package manifest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"pets", "/pets"},
		{"/pets/", "/pets"},
		{"//pets//{id}/", "/pets/{id}"},
		{"///", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "input %q", tt.in)
	}
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/pets/{id}", JoinPaths("/pets", "/{id}"))
	assert.Equal(t, "/pets", JoinPaths("/pets", "/"))
	assert.Equal(t, "/pets", JoinPaths("/", "pets"))
	assert.Equal(t, "/api/v1/pets", JoinPaths("api/v1/", "pets/"))
}

func TestPathSegments(t *testing.T) {
	assert.Nil(t, PathSegments("/"))
	assert.Equal(t, []string{"pets", "{id}"}, PathSegments("/pets/{id}"))
}

func TestDynamicSegments(t *testing.T) {
	assert.True(t, IsDynamicSegment("{id}"))
	assert.False(t, IsDynamicSegment("pets"))
	assert.False(t, IsDynamicSegment("{}"))
	assert.Equal(t, "id", SegmentName("{id}"))
}

func TestDefaultStatus(t *testing.T) {
	assert.Equal(t, http.StatusCreated, DefaultStatus("POST"))
	assert.Equal(t, http.StatusNoContent, DefaultStatus("delete"))
	assert.Equal(t, http.StatusOK, DefaultStatus("GET"))
	assert.Equal(t, http.StatusOK, DefaultStatus("PUT"))
}
