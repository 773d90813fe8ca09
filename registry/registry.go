// Package registry freezes the route manifest into an immutable lookup
// structure at boot and dispatches live requests against it. After the
// Building→Frozen transition the registry is shared across concurrent
// requests without locks; every request owns its own context.
package registry

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/celsowm/adorn-api-sub006/logger"
	"github.com/celsowm/adorn-api-sub006/manifest"
)

const (
	stateBuilding int32 = iota
	stateFrozen
)

type segment struct {
	literal string
	name    string
	dynamic bool
}

// Route is one frozen entry: the definition plus its precompiled
// matching and invocation state.
type Route struct {
	Def      manifest.RouteDefinition
	segments []segment
	handler  reflect.Value
	bindings []manifest.ArgBinding
	params   map[string]*manifest.ParamModel
}

// Registry holds routes in first-registration order, which is also the
// matching precedence order for overlapping templates.
type Registry struct {
	log      logger.Logger
	state    atomic.Int32
	routes   []*Route
	byMethod map[string][]*Route
}

// New creates a registry in the Building state.
func New(log logger.Logger) *Registry {
	return &Registry{
		log:      log,
		byMethod: make(map[string][]*Route),
	}
}

// Register adds a route. Mutating a frozen registry is a programming
// error and panics; duplicate (method, fullPath) pairs are a build
// failure returned as an error.
func (r *Registry) Register(def manifest.RouteDefinition) error {
	if r.state.Load() == stateFrozen {
		panic("registry: Register called after Freeze")
	}

	if def.Handler == nil {
		return fmt.Errorf("registry: route %s %s has no handler", def.Method, def.FullPath)
	}
	handler := reflect.ValueOf(def.Handler)
	if handler.Kind() != reflect.Func {
		return fmt.Errorf("registry: route %s %s handler is not a function", def.Method, def.FullPath)
	}

	for _, existing := range r.byMethod[def.Method] {
		if existing.Def.FullPath == def.FullPath {
			return fmt.Errorf("registry: duplicate route %s %s", def.Method, def.FullPath)
		}
	}

	route := &Route{
		Def:      def,
		handler:  handler,
		bindings: def.Bindings,
		params:   make(map[string]*manifest.ParamModel, len(def.Params)),
	}
	for i := range def.Params {
		p := &def.Params[i]
		route.params[p.Name] = p
	}
	for _, seg := range manifest.PathSegments(def.FullPath) {
		if manifest.IsDynamicSegment(seg) {
			route.segments = append(route.segments, segment{name: manifest.SegmentName(seg), dynamic: true})
		} else {
			route.segments = append(route.segments, segment{literal: seg})
		}
	}

	if len(route.bindings) == 0 {
		inferred, err := inferBindings(&def, handler.Type())
		if err != nil {
			return err
		}
		route.bindings = inferred
	}

	r.routes = append(r.routes, route)
	r.byMethod[def.Method] = append(r.byMethod[def.Method], route)
	return nil
}

// Freeze transitions the registry to its immutable state. It runs
// exactly once; a second call is a programming error. Overlapping
// dynamic templates are reported so callers do not silently rely on
// registration order.
func (r *Registry) Freeze() {
	if !r.state.CompareAndSwap(stateBuilding, stateFrozen) {
		panic("registry: Freeze called twice")
	}
	r.warnOverlaps()
}

// Frozen reports whether the registry accepts requests.
func (r *Registry) Frozen() bool {
	return r.state.Load() == stateFrozen
}

// Routes returns the frozen definitions in registration order.
func (r *Registry) Routes() []manifest.RouteDefinition {
	out := make([]manifest.RouteDefinition, len(r.routes))
	for i, route := range r.routes {
		out[i] = route.Def
	}
	return out
}

// Match finds the first-registered template whose literal segments
// equal the request path's. Dynamic segments capture raw strings; type
// mismatches are deferred to coercion, not treated as match failures.
func (r *Registry) Match(method, path string) (*Route, map[string]string, bool) {
	if r.state.Load() != stateFrozen {
		panic("registry: Match called before Freeze")
	}

	segments := manifest.PathSegments(path)
	for _, route := range r.byMethod[method] {
		captures, ok := matchSegments(route.segments, segments)
		if ok {
			return route, captures, true
		}
	}
	return nil, nil, false
}

func matchSegments(template []segment, actual []string) (map[string]string, bool) {
	if len(template) != len(actual) {
		return nil, false
	}
	var captures map[string]string
	for i, seg := range template {
		if seg.dynamic {
			if captures == nil {
				captures = make(map[string]string)
			}
			captures[seg.name] = actual[i]
			continue
		}
		if seg.literal != actual[i] {
			return nil, false
		}
	}
	return captures, true
}

// warnOverlaps logs each pair of templates that can match the same
// request path. Resolution order is first registration, which is not
// stable across controller reordering.
func (r *Registry) warnOverlaps() {
	if r.log == nil {
		return
	}
	for _, routes := range r.byMethod {
		for i := 0; i < len(routes); i++ {
			for j := i + 1; j < len(routes); j++ {
				if templatesOverlap(routes[i].segments, routes[j].segments) {
					r.log.Warn().
						Str("first", routes[i].Def.FullPath).
						Str("second", routes[j].Def.FullPath).
						Str("method", routes[i].Def.Method).
						Msg("Overlapping route templates resolve by registration order")
				}
			}
		}
	}
}

func templatesOverlap(a, b []segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].dynamic || b[i].dynamic {
			continue
		}
		if a[i].literal != b[i].literal {
			return false
		}
	}
	return true
}
