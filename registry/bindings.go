package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/celsowm/adorn-api-sub006/httperr"
	"github.com/celsowm/adorn-api-sub006/manifest"
)

var (
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	invocationType = reflect.TypeOf((*manifest.Invocation)(nil)).Elem()
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	uuidType       = reflect.TypeOf(uuid.UUID{})
)

// inferBindings derives per-argument bindings from the handler
// signature when none were declared. Context-typed arguments bind the
// request context, scalars bind path parameters first and query
// parameters after, and a struct-shaped argument binds the body.
func inferBindings(def *manifest.RouteDefinition, handlerType reflect.Type) ([]manifest.ArgBinding, error) {
	var pathNames, queryNames []string
	for _, p := range def.Params {
		switch p.In {
		case "path":
			pathNames = append(pathNames, p.Name)
		case "query":
			queryNames = append(queryNames, p.Name)
		}
	}

	bindings := make([]manifest.ArgBinding, 0, handlerType.NumIn())
	for i := 0; i < handlerType.NumIn(); i++ {
		in := handlerType.In(i)
		switch {
		case isContextArg(in):
			bindings = append(bindings, manifest.ArgBinding{Index: i, Kind: manifest.BindContext})
		case isScalarType(in):
			if len(pathNames) > 0 {
				bindings = append(bindings, manifest.ArgBinding{Index: i, Kind: manifest.BindParams, Name: pathNames[0]})
				pathNames = pathNames[1:]
				continue
			}
			if len(queryNames) > 0 {
				bindings = append(bindings, manifest.ArgBinding{Index: i, Kind: manifest.BindQuery, Name: queryNames[0]})
				queryNames = queryNames[1:]
				continue
			}
			return nil, fmt.Errorf("registry: route %s %s argument %d has no parameter to bind", def.Method, def.FullPath, i)
		default:
			bindings = append(bindings, manifest.ArgBinding{Index: i, Kind: manifest.BindBody})
		}
	}
	if len(pathNames) > 0 {
		return nil, fmt.Errorf("registry: route %s %s path parameter %q has no handler argument", def.Method, def.FullPath, pathNames[0])
	}
	return bindings, nil
}

func isContextArg(t reflect.Type) bool {
	if t == contextType || t == invocationType {
		return true
	}
	return t == reflect.TypeOf((*Context)(nil))
}

func isScalarType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == uuidType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// buildArgs assembles the reflect call arguments for one request.
func (d *Dispatcher) buildArgs(route *Route, rc *Context) ([]reflect.Value, error) {
	handlerType := route.handler.Type()
	args := make([]reflect.Value, handlerType.NumIn())
	for i := range args {
		args[i] = reflect.Zero(handlerType.In(i))
	}

	for _, binding := range route.bindings {
		if binding.Index < 0 || binding.Index >= len(args) {
			return nil, fmt.Errorf("registry: route %s %s binding index %d out of range",
				route.Def.Method, route.Def.FullPath, binding.Index)
		}
		argType := handlerType.In(binding.Index)

		var (
			value reflect.Value
			err   error
		)
		switch binding.Kind {
		case manifest.BindContext:
			value, err = contextValue(rc, argType)
		case manifest.BindParams:
			value, err = scalarValue(rc.coerced[binding.Name], argType, "params", binding.Name)
		case manifest.BindQuery:
			value, err = queryValue(rc, binding.Name, argType)
		case manifest.BindBody:
			value, err = bodyValue(rc.body, argType)
		case manifest.BindHeaders:
			value, err = scalarValue(rc.Header(binding.Name), argType, "headers", binding.Name)
		case manifest.BindState:
			value, err = stateValue(rc.State(binding.Name), argType)
		default:
			err = fmt.Errorf("registry: unknown binding kind %q", binding.Kind)
		}
		if err != nil {
			return nil, err
		}
		args[binding.Index] = value
	}
	return args, nil
}

func contextValue(rc *Context, argType reflect.Type) (reflect.Value, error) {
	switch {
	case argType == contextType:
		return reflect.ValueOf(rc.Context()), nil
	case argType == invocationType || argType == reflect.TypeOf((*Context)(nil)):
		return reflect.ValueOf(rc), nil
	}
	return reflect.Value{}, fmt.Errorf("registry: context binding cannot satisfy argument type %s", argType)
}

func queryValue(rc *Context, name string, argType reflect.Type) (reflect.Value, error) {
	coerced, ok := rc.coerced[name]
	if !ok {
		raw := rc.Query(name)
		if raw == "" {
			return reflect.Zero(argType), nil
		}
		coerced = raw
	}
	return scalarValue(coerced, argType, "query", name)
}

// scalarValue converts a coerced scalar to the argument type. Pointer
// arguments mark optional parameters; a present value is boxed, an
// absent one stays nil.
func scalarValue(value any, argType reflect.Type, source, name string) (reflect.Value, error) {
	if argType.Kind() == reflect.Pointer {
		if value == nil || value == "" {
			return reflect.Zero(argType), nil
		}
		inner, err := scalarValue(value, argType.Elem(), source, name)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(argType.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	}

	if value == nil {
		return reflect.Zero(argType), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == argType {
		return rv, nil
	}
	if rv.Kind() != reflect.String && rv.Type().ConvertibleTo(argType) {
		return rv.Convert(argType), nil
	}
	if rv.Kind() == reflect.String && argType.Kind() == reflect.String {
		return rv.Convert(argType), nil
	}
	return reflect.Value{}, httperr.NewValidationError(httperr.Issue{
		Source:  source,
		Path:    name,
		Message: fmt.Sprintf("cannot assign %T to %s", value, argType),
	})
}

// bodyValue decodes the JSON body into a fresh instance of the
// argument type.
func bodyValue(body []byte, argType reflect.Type) (reflect.Value, error) {
	target := argType
	pointer := argType.Kind() == reflect.Pointer
	if pointer {
		target = argType.Elem()
	}
	out := reflect.New(target)
	if len(body) > 0 {
		if err := json.Unmarshal(body, out.Interface()); err != nil {
			return reflect.Value{}, httperr.NewValidationError(httperr.Issue{
				Source:  "body",
				Message: "request body does not match the expected shape",
			})
		}
	}
	if pointer {
		return out, nil
	}
	return out.Elem(), nil
}

func stateValue(value any, argType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(argType), nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(argType) {
		return reflect.Value{}, fmt.Errorf("registry: state value %T is not assignable to %s", value, argType)
	}
	return rv, nil
}

// invoke calls the handler and splits its results into a payload and
// an error. Supported shapes: (R, error), (R), (error) and ().
func invoke(route *Route, args []reflect.Value) (any, error) {
	out := route.handler.Call(args)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if route.handler.Type().Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		return out[0].Interface(), asError(out[1])
	default:
		return nil, fmt.Errorf("registry: route %s %s handler returns %d values",
			route.Def.Method, route.Def.FullPath, len(out))
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
