// Package manifest defines the intermediate representation shared by
// the metadata collector, the static analyzer and the runtime
// registry, and the builder that reconciles both metadata sources into
// canonical route definitions.
package manifest

import (
	"context"

	"github.com/celsowm/adorn-api-sub006/httperr"
)

// ScalarHint is the inferred primitive type for a dynamic path or
// query token, used for coercion at dispatch time.
type ScalarHint string

const (
	HintString  ScalarHint = "string"
	HintInt     ScalarHint = "int"
	HintNumber  ScalarHint = "number"
	HintBoolean ScalarHint = "boolean"
	HintUUID    ScalarHint = "uuid"
)

// BindingKind identifies the request source that populates one handler
// argument.
type BindingKind string

const (
	BindContext BindingKind = "context"
	BindQuery   BindingKind = "query"
	BindParams  BindingKind = "params"
	BindBody    BindingKind = "body"
	BindHeaders BindingKind = "headers"
	BindState   BindingKind = "state"
)

// ArgBinding instructs the dispatcher how to populate the handler
// argument at Index from an inbound request.
type ArgBinding struct {
	Index int         `json:"index"`
	Kind  BindingKind `json:"kind"`
	Name  string      `json:"name,omitempty"`
}

// ParamModel describes one declared handler parameter.
type ParamModel struct {
	Name     string     `json:"name"`
	TypeText string     `json:"type"`
	In       string     `json:"in"` // "path" or "query"
	Optional bool       `json:"optional,omitempty"`
	Hint     ScalarHint `json:"hint,omitempty"`
}

// ResponseMeta describes the response of a route.
type ResponseMeta struct {
	Status      int    `json:"status"`
	TypeText    string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReturnMeta carries the raw declared return type of a handler and the
// payload type after unwrapping one level of result wrapper.
type ReturnMeta struct {
	Raw       string `json:"raw,omitempty"`
	Unwrapped string `json:"unwrapped,omitempty"`
}

// Invocation is the view of one in-flight request that guards and
// middlewares observe. The dispatcher's request context implements it.
type Invocation interface {
	Context() context.Context
	Param(name string) string
	Query(name string) string
	Header(name string) string
	State(key string) any
	SetState(key string, value any)
}

// Guard is a pre-handler check. Returning false rejects the request
// before the handler is invoked.
type Guard func(inv Invocation) (bool, error)

// Middleware is a pre-handler step executed in registration order. A
// non-nil error aborts the remaining chain for that request.
type Middleware func(inv Invocation) error

// ValidationSchema is the opaque capability every validation-library
// binding exposes. A nil issue slice means the data parsed cleanly.
type ValidationSchema interface {
	Parse(data any) []httperr.Issue
}

// MethodMeta accumulates everything declared for one controller method.
// Array-valued fields merge by accumulation across repeated
// declarations; scalar fields are last-write-wins.
type MethodMeta struct {
	Name           string           `json:"name"`
	HTTPMethod     string           `json:"httpMethod"`
	Path           string           `json:"path"`
	Summary        string           `json:"summary,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Bindings       []ArgBinding     `json:"bindings,omitempty"`
	Responses      []ResponseMeta   `json:"responses,omitempty"`
	StatusOverride int              `json:"statusOverride,omitempty"`
	Handler        any              `json:"-"`
	Middlewares    []Middleware     `json:"-"`
	Guards         []Guard          `json:"-"`
	Schema         ValidationSchema `json:"-"`
}

// ControllerDefinition is the finalized metadata bucket for one
// controller. Owned exclusively by the manifest once built.
type ControllerDefinition struct {
	Name     string       `json:"name"`
	BasePath string       `json:"basePath"`
	Tags     []string     `json:"tags,omitempty"`
	Methods  []MethodMeta `json:"methods"`
}

// Method returns the method bucket with the given name, or nil.
func (c *ControllerDefinition) Method(name string) *MethodMeta {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// RouteMatch is one fact record produced by the static analyzer,
// independent of anything the collector recorded.
type RouteMatch struct {
	Controller string       `json:"controller"`
	Method     string       `json:"method"`
	Verb       string       `json:"verb"`
	Path       string       `json:"path"`
	Params     []ParamModel `json:"params,omitempty"`
	Return     ReturnMeta   `json:"return,omitempty"`
	File       string       `json:"-"`
	Line       int          `json:"-"`
}

// RouteDefinition is the canonical merged description of one route.
// The exported fields serialize into the manifest document; runtime
// references (handler, chains, schema) are dispatch-only.
type RouteDefinition struct {
	Controller string       `json:"controller"`
	HandlerID  string       `json:"handler"`
	Method     string       `json:"method"`
	Path       string       `json:"path"`
	FullPath   string       `json:"fullPath"`
	Params     []ParamModel `json:"params,omitempty"`
	Bindings   []ArgBinding `json:"bindings,omitempty"`
	Response   ResponseMeta `json:"response"`
	Return     ReturnMeta   `json:"return,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	Summary    string       `json:"summary,omitempty"`

	Handler     any              `json:"-"`
	Middlewares []Middleware     `json:"-"`
	Guards      []Guard          `json:"-"`
	Schema      ValidationSchema `json:"-"`
}
