package registry

import (
	"context"
	"net/http"
	"net/url"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

// Context is the request-scoped state for one dispatch. It is created
// fresh per request and never shared between in-flight requests; that
// isolation is a correctness requirement, not an optimization.
type Context struct {
	ctx     context.Context
	params  map[string]string
	coerced map[string]any
	query   url.Values
	headers http.Header
	body    []byte
	state   map[string]any
}

var _ manifest.Invocation = (*Context)(nil)

// Context returns the underlying request context.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Param returns the raw captured value of a dynamic path segment.
func (c *Context) Param(name string) string {
	return c.params[name]
}

// ParamValue returns the coerced value of a path parameter.
func (c *Context) ParamValue(name string) any {
	return c.coerced[name]
}

// Query returns the first value of a query parameter.
func (c *Context) Query(name string) string {
	return c.query.Get(name)
}

// Header returns the first value of a request header.
func (c *Context) Header(name string) string {
	return c.headers.Get(name)
}

// Body returns the raw request body.
func (c *Context) Body() []byte {
	return c.body
}

// State returns a request-scoped state entry set by a middleware or
// guard, or nil.
func (c *Context) State(key string) any {
	return c.state[key]
}

// SetState stores a request-scoped state entry.
func (c *Context) SetState(key string, value any) {
	if c.state == nil {
		c.state = make(map[string]any)
	}
	c.state[key] = value
}
