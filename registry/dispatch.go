package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/celsowm/adorn-api-sub006/httperr"
	"github.com/celsowm/adorn-api-sub006/logger"
	"github.com/celsowm/adorn-api-sub006/manifest"
)

// Request is the transport-independent view of one inbound request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// Response is the dispatch outcome. Body is a serializable value; a
// nil body with a 204 status produces an empty response.
type Response struct {
	Status  int
	Headers http.Header
	Body    any
}

// Dispatcher runs the request pipeline against a frozen registry.
type Dispatcher struct {
	reg *Registry
	log logger.Logger
}

// NewDispatcher creates a dispatcher. The registry must be frozen
// before the first Dispatch call.
func NewDispatcher(reg *Registry, log logger.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, log: log}
}

// Dispatch matches, binds, validates and invokes. Every failure path
// produces a response; nothing escapes as an unhandled error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			if d.log != nil {
				d.log.Error().Interface("panic", rec).
					Str("method", req.Method).Str("path", req.Path).
					Msg("Panic recovered in handler")
			}
			status, body := httperr.Normalize(fmt.Errorf("panic: %v", rec))
			resp = &Response{Status: status, Body: body}
		}
	}()

	route, captures, ok := d.reg.Match(req.Method, req.Path)
	if !ok {
		return d.fail(req, httperr.NewHTTPError(http.StatusNotFound, "NOT_FOUND", "route not found").Exposed())
	}

	rc := &Context{
		ctx:     ctx,
		params:  captures,
		query:   req.Query,
		headers: req.Headers,
		body:    req.Body,
	}

	for _, mw := range route.Def.Middlewares {
		if err := mw(rc); err != nil {
			return d.fail(req, err)
		}
	}
	for _, guard := range route.Def.Guards {
		allowed, err := guard(rc)
		if err != nil {
			return d.fail(req, err)
		}
		if !allowed {
			return d.fail(req, httperr.NewForbiddenError(""))
		}
	}

	if err := d.coerceParams(route, rc); err != nil {
		return d.fail(req, err)
	}

	if route.Def.Schema != nil {
		if err := d.runSchema(route, rc); err != nil {
			return d.fail(req, err)
		}
	}

	args, err := d.buildArgs(route, rc)
	if err != nil {
		return d.fail(req, err)
	}

	result, err := invoke(route, args)
	if err != nil {
		return d.fail(req, err)
	}

	resp = &Response{Status: route.Def.Response.Status, Body: result}
	if rl, ok := result.(ResultLike); ok {
		status, headers, data := rl.ResultMeta()
		if status != 0 {
			resp.Status = status
		}
		resp.Headers = headers
		resp.Body = data
	}
	if resp.Status == http.StatusNoContent {
		resp.Body = nil
	}
	return resp
}

func (d *Dispatcher) fail(req *Request, err error) *Response {
	status, body := httperr.Normalize(err)
	if status >= http.StatusInternalServerError && d.log != nil {
		d.log.Error().Err(err).
			Str("method", req.Method).Str("path", req.Path).
			Msg("Unhandled dispatch error")
	}
	return &Response{Status: status, Body: body}
}

// coerceParams converts raw captures and present query values per
// their scalar hints. A parse failure is a ValidationError tagged with
// the offending source and field.
func (d *Dispatcher) coerceParams(route *Route, rc *Context) error {
	rc.coerced = make(map[string]any, len(route.Def.Params))
	for i := range route.Def.Params {
		p := &route.Def.Params[i]
		switch p.In {
		case "path":
			value, err := coerceScalar(p.Hint, rc.params[p.Name])
			if err != nil {
				return httperr.NewValidationError(httperr.Issue{
					Source: "params", Path: p.Name, Message: err.Error(),
				})
			}
			rc.coerced[p.Name] = value
		case "query":
			raw := rc.query.Get(p.Name)
			if raw == "" {
				continue
			}
			value, err := coerceScalar(p.Hint, raw)
			if err != nil {
				return httperr.NewValidationError(httperr.Issue{
					Source: "query", Path: p.Name, Message: err.Error(),
				})
			}
			rc.coerced[p.Name] = value
		}
	}
	return nil
}

// runSchema validates the assembled request data. Issue sources are
// derived from the top-level section each issue path points into.
func (d *Dispatcher) runSchema(route *Route, rc *Context) error {
	assembled := map[string]any{
		"params": paramsMap(route, rc),
		"query":  queryMap(rc.query),
	}
	if len(rc.body) > 0 {
		var body any
		if err := json.Unmarshal(rc.body, &body); err != nil {
			return httperr.NewValidationError(httperr.Issue{
				Source: "body", Message: "request body is not valid JSON",
			})
		}
		assembled["body"] = body
	}

	issues := route.Def.Schema.Parse(assembled)
	if len(issues) == 0 {
		return nil
	}
	tagged := make([]httperr.Issue, len(issues))
	for i, issue := range issues {
		tagged[i] = tagSource(issue)
	}
	return httperr.NewValidationError(tagged...)
}

func tagSource(issue httperr.Issue) httperr.Issue {
	if issue.Source != "" {
		return issue
	}
	section, rest, found := strings.Cut(issue.Path, ".")
	switch section {
	case "params", "query", "body", "headers":
		issue.Source = section
		if found {
			issue.Path = rest
		} else {
			issue.Path = ""
		}
	default:
		issue.Source = "body"
	}
	return issue
}

func paramsMap(route *Route, rc *Context) map[string]any {
	out := make(map[string]any, len(rc.coerced))
	for name, value := range rc.coerced {
		if p, ok := route.params[name]; ok && p.In == "path" {
			out[name] = value
		}
	}
	return out
}

func queryMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for name := range values {
		out[name] = values.Get(name)
	}
	return out
}

// coerceScalar parses a raw string capture according to its hint.
func coerceScalar(hint manifest.ScalarHint, raw string) (any, error) {
	switch hint {
	case manifest.HintInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", raw)
		}
		return n, nil
	case manifest.HintNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", raw)
		}
		return f, nil
	case manifest.HintBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean", raw)
		}
		return b, nil
	case manifest.HintUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid UUID", raw)
		}
		return id, nil
	default:
		return raw, nil
	}
}
