package registry

import "net/http"

// ResultLike lets a handler return value override the route's declared
// status and attach response headers.
type ResultLike interface {
	ResultMeta() (status int, headers http.Header, data any)
}

// Result wraps a handler payload with response metadata. A zero Status
// keeps the route's declared status.
type Result[T any] struct {
	Data    T
	Status  int
	Headers http.Header
}

// Ok wraps data with no status override.
func Ok[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Created wraps data with a 201 status.
func Created[T any](data T) Result[T] {
	return Result[T]{Data: data, Status: http.StatusCreated}
}

// NoContent produces an empty 204 result.
func NoContent() Result[struct{}] {
	return Result[struct{}]{Status: http.StatusNoContent}
}

// WithHeader returns a copy carrying an extra response header.
func (r Result[T]) WithHeader(key, value string) Result[T] {
	headers := make(http.Header, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers.Add(key, value)
	r.Headers = headers
	return r
}

// ResultMeta implements ResultLike.
func (r Result[T]) ResultMeta() (int, http.Header, any) {
	return r.Status, r.Headers, r.Data
}
