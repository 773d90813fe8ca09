package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildError is a fatal build-time failure. The builder never produces
// a partial manifest: the first inconsistency aborts the build.
type BuildError struct {
	Controller string
	Method     string
	Msg        string
}

func (e *BuildError) Error() string {
	if e.Controller == "" {
		return "manifest build failed: " + e.Msg
	}
	if e.Method == "" {
		return fmt.Sprintf("manifest build failed: %s: %s", e.Controller, e.Msg)
	}
	return fmt.Sprintf("manifest build failed: %s.%s: %s", e.Controller, e.Method, e.Msg)
}

func buildErrorf(controller, method, format string, args ...any) *BuildError {
	return &BuildError{Controller: controller, Method: method, Msg: fmt.Sprintf(format, args...)}
}

// arityReporter is implemented by validation schemas that know how
// many fields they declare. Used to cross-check declared schemas
// against statically inferred path parameters.
type arityReporter interface {
	Arity() int
}

// Build reconciles collector-declared controller metadata with
// analyzer-produced route matches into canonical route definitions.
// Every declared method must have exactly one static match and vice
// versa; both directions are hard build failures.
func Build(controllers []ControllerDefinition, matches []RouteMatch) ([]RouteDefinition, error) {
	matchIndex := make(map[string]*RouteMatch, len(matches))
	for i := range matches {
		m := &matches[i]
		matchIndex[joinKey(m.Controller, m.Method)] = m
	}

	consumed := make(map[string]bool, len(matches))
	seen := make(map[string]string)
	var routes []RouteDefinition

	for ci := range controllers {
		ctrl := &controllers[ci]
		for mi := range ctrl.Methods {
			meta := &ctrl.Methods[mi]
			key := joinKey(ctrl.Name, meta.Name)

			match, ok := matchIndex[key]
			if !ok {
				return nil, buildErrorf(ctrl.Name, meta.Name, "declared metadata has no static route match")
			}
			consumed[key] = true

			route, err := buildRoute(ctrl, meta, match)
			if err != nil {
				return nil, err
			}

			routeKey := route.Method + " " + route.FullPath
			if prev, dup := seen[routeKey]; dup {
				return nil, buildErrorf(ctrl.Name, meta.Name,
					"duplicate route %s already registered by %s", routeKey, prev)
			}
			seen[routeKey] = route.HandlerID
			routes = append(routes, *route)
		}
	}

	for i := range matches {
		m := &matches[i]
		if !consumed[joinKey(m.Controller, m.Method)] {
			return nil, buildErrorf(m.Controller, m.Method,
				"static route match has no declared metadata (%s:%d)", m.File, m.Line)
		}
	}

	return routes, nil
}

func buildRoute(ctrl *ControllerDefinition, meta *MethodMeta, match *RouteMatch) (*RouteDefinition, error) {
	if !strings.EqualFold(meta.HTTPMethod, match.Verb) {
		return nil, buildErrorf(ctrl.Name, meta.Name,
			"declared verb %s disagrees with analyzed verb %s", meta.HTTPMethod, match.Verb)
	}
	if NormalizePath(meta.Path) != NormalizePath(match.Path) {
		return nil, buildErrorf(ctrl.Name, meta.Name,
			"declared path %q disagrees with analyzed path %q", meta.Path, match.Path)
	}

	params := make([]ParamModel, len(match.Params))
	copy(params, match.Params)

	// Every params binding must reference a statically known path
	// parameter; the analyzer is the source of truth for hints.
	for _, b := range meta.Bindings {
		if b.Kind != BindParams || b.Name == "" {
			continue
		}
		if findParam(params, b.Name, "path") == nil {
			return nil, buildErrorf(ctrl.Name, meta.Name,
				"binding references unknown path parameter %q", b.Name)
		}
	}

	if meta.Schema != nil {
		if ar, ok := meta.Schema.(arityReporter); ok {
			if n := countPathParams(params); ar.Arity() != 0 && ar.Arity() < n {
				return nil, buildErrorf(ctrl.Name, meta.Name,
					"validation schema declares %d fields but route has %d path parameters", ar.Arity(), n)
			}
		}
	}

	fullPath := JoinPaths(ctrl.BasePath, meta.Path)

	status := DefaultStatus(meta.HTTPMethod)
	if meta.StatusOverride != 0 {
		status = meta.StatusOverride
	}
	response := ResponseMeta{Status: status, TypeText: match.Return.Unwrapped}
	if len(meta.Responses) > 0 {
		last := meta.Responses[len(meta.Responses)-1]
		if last.Status != 0 {
			response.Status = last.Status
		}
		if last.TypeText != "" {
			response.TypeText = last.TypeText
		}
		response.Description = last.Description
	}

	tags := append(append([]string(nil), ctrl.Tags...), meta.Tags...)

	return &RouteDefinition{
		Controller:  ctrl.Name,
		HandlerID:   joinKey(ctrl.Name, meta.Name),
		Method:      strings.ToUpper(meta.HTTPMethod),
		Path:        NormalizePath(meta.Path),
		FullPath:    fullPath,
		Params:      params,
		Bindings:    append([]ArgBinding(nil), meta.Bindings...),
		Response:    response,
		Return:      match.Return,
		Tags:        tags,
		Summary:     meta.Summary,
		Handler:     meta.Handler,
		Middlewares: meta.Middlewares,
		Guards:      meta.Guards,
		Schema:      meta.Schema,
	}, nil
}

func joinKey(controller, method string) string {
	return controller + "." + method
}

func findParam(params []ParamModel, name, in string) *ParamModel {
	for i := range params {
		if params[i].Name == name && params[i].In == in {
			return &params[i]
		}
	}
	return nil
}

func countPathParams(params []ParamModel) int {
	n := 0
	for i := range params {
		if params[i].In == "path" {
			n++
		}
	}
	return n
}

// Document is the serializable manifest. Route order is the
// registration order, which is also the matching precedence order.
type Document struct {
	Routes []RouteDefinition `json:"routes"`
}

// MarshalIndent renders the manifest as formatted JSON. Output is
// deterministic for identical inputs so cached and fresh builds
// compare byte-for-byte.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal parses a serialized manifest. Runtime-only fields stay
// nil; a parsed manifest carries metadata, not live handlers.
func (d *Document) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, d); err != nil {
		return fmt.Errorf("manifest: parse document: %w", err)
	}
	return nil
}
