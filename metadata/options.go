package metadata

import (
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

// Option configures one method declaration.
type Option func(*manifest.MethodMeta)

// WithSummary sets the route summary. Last write wins.
func WithSummary(summary string) Option {
	return func(m *manifest.MethodMeta) { m.Summary = summary }
}

// WithTags adds grouping tags. Repeated applications accumulate.
func WithTags(tags ...string) Option {
	return func(m *manifest.MethodMeta) { m.Tags = append(m.Tags, tags...) }
}

// WithStatus overrides the verb-derived default response status.
func WithStatus(status int) Option {
	return func(m *manifest.MethodMeta) { m.StatusOverride = status }
}

// WithResponse declares response metadata. Repeated applications
// accumulate; the last declared status wins at build time.
func WithResponse(status int, typeText, description string) Option {
	return func(m *manifest.MethodMeta) {
		m.Responses = append(m.Responses, manifest.ResponseMeta{
			Status: status, TypeText: typeText, Description: description,
		})
	}
}

// WithMiddlewares appends middlewares to the method chain.
func WithMiddlewares(mw ...manifest.Middleware) Option {
	return func(m *manifest.MethodMeta) { m.Middlewares = append(m.Middlewares, mw...) }
}

// WithGuards appends guards to the method chain.
func WithGuards(guards ...manifest.Guard) Option {
	return func(m *manifest.MethodMeta) { m.Guards = append(m.Guards, guards...) }
}

// WithSchema attaches a validation schema run against the assembled
// request data before the handler is invoked.
func WithSchema(schema manifest.ValidationSchema) Option {
	return func(m *manifest.MethodMeta) { m.Schema = schema }
}

// WithBindings declares how handler arguments are populated.
func WithBindings(bindings ...manifest.ArgBinding) Option {
	return func(m *manifest.MethodMeta) { m.Bindings = append(m.Bindings, bindings...) }
}

// Ctx binds argument i to the request context.
func Ctx(i int) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindContext}
}

// Param binds argument i to the named path parameter.
func Param(i int, name string) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindParams, Name: name}
}

// Query binds argument i to the named query parameter.
func Query(i int, name string) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindQuery, Name: name}
}

// Body binds argument i to the decoded request body.
func Body(i int) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindBody}
}

// Header binds argument i to the named request header.
func Header(i int, name string) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindHeaders, Name: name}
}

// State binds argument i to a request-scoped state entry, typically
// populated by a middleware or guard.
func State(i int, key string) manifest.ArgBinding {
	return manifest.ArgBinding{Index: i, Kind: manifest.BindState, Name: key}
}

// Route declares a method on a controller. The method name is derived
// from the handler function; the HTTP verb and literal path must match
// what the static analyzer extracts from source.
func Route(c *Collector, identity, verb, path string, handler any, opts ...Option) error {
	meta := manifest.MethodMeta{
		HTTPMethod: strings.ToUpper(verb),
		Path:       path,
		Handler:    handler,
	}
	for _, opt := range opts {
		opt(&meta)
	}
	return c.DeclareMethod(identity, handlerName(handler), meta)
}

// GET declares a GET method.
func GET(c *Collector, identity, path string, handler any, opts ...Option) error {
	return Route(c, identity, http.MethodGet, path, handler, opts...)
}

// POST declares a POST method.
func POST(c *Collector, identity, path string, handler any, opts ...Option) error {
	return Route(c, identity, http.MethodPost, path, handler, opts...)
}

// PUT declares a PUT method.
func PUT(c *Collector, identity, path string, handler any, opts ...Option) error {
	return Route(c, identity, http.MethodPut, path, handler, opts...)
}

// DELETE declares a DELETE method.
func DELETE(c *Collector, identity, path string, handler any, opts ...Option) error {
	return Route(c, identity, http.MethodDelete, path, handler, opts...)
}

// PATCH declares a PATCH method.
func PATCH(c *Collector, identity, path string, handler any, opts ...Option) error {
	return Route(c, identity, http.MethodPatch, path, handler, opts...)
}

// handlerName extracts the bare method name from a handler function.
// "github.com/x/y.(*ItemController).GetItem-fm" yields "GetItem".
func handlerName(handler any) string {
	if handler == nil {
		return ""
	}
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return ""
	}
	name := runtime.FuncForPC(v.Pointer()).Name()
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
