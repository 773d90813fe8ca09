package analyzer

import (
	"go/ast"
	"strings"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

// resultWrappers are generic return wrappers unwrapped one level to
// reach the payload type.
var resultWrappers = map[string]bool{
	"Result": true,
	"Future": true,
}

// analyzeSignature derives parameter models and return metadata from a
// handler declaration, cross-checking dynamic path segments against
// the declared parameters.
func (pa *packageAnalyzer) analyzeSignature(funcDecl *ast.FuncDecl, call *registrationCall) ([]manifest.ParamModel, manifest.ReturnMeta, error) {
	dynamic := make(map[string]bool)
	for _, segment := range manifest.PathSegments(call.path) {
		if manifest.IsDynamicSegment(segment) {
			dynamic[manifest.SegmentName(segment)] = false
		}
	}

	var params []manifest.ParamModel
	if funcDecl.Type.Params != nil {
		for _, field := range funcDecl.Type.Params.List {
			typeText := typeString(field.Type)
			for _, ident := range field.Names {
				model, err := pa.classifyParam(ident.Name, typeText, field.Type, dynamic, call)
				if err != nil {
					return nil, manifest.ReturnMeta{}, err
				}
				if model != nil {
					params = append(params, *model)
				}
			}
		}
	}

	for name, matched := range dynamic {
		if !matched {
			return nil, manifest.ReturnMeta{}, errorf(call.file, call.line, call.identity, call.handlerName,
				"dynamic segment {%s} has no matching handler parameter", name)
		}
	}

	return params, returnMeta(funcDecl.Type.Results), nil
}

// classifyParam turns one declared parameter into a ParamModel, or nil
// for framework and body parameters.
func (pa *packageAnalyzer) classifyParam(name, typeText string, typeExpr ast.Expr, dynamic map[string]bool, call *registrationCall) (*manifest.ParamModel, error) {
	if isContextType(typeText) {
		return nil, nil
	}

	base := strings.TrimPrefix(typeText, "*")
	optional := strings.HasPrefix(typeText, "*")
	hint, scalar := scalarHint(base, name)

	if _, isDynamic := dynamic[name]; isDynamic {
		if !scalar {
			return nil, errorf(call.file, call.line, call.identity, call.handlerName,
				"path parameter %q has non-scalar type %s", name, typeText)
		}
		if optional {
			return nil, errorf(call.file, call.line, call.identity, call.handlerName,
				"path parameter %q cannot be optional", name)
		}
		dynamic[name] = true
		return &manifest.ParamModel{Name: name, TypeText: typeText, In: "path", Hint: hint}, nil
	}

	if scalar {
		return &manifest.ParamModel{Name: name, TypeText: typeText, In: "query", Optional: optional, Hint: hint}, nil
	}

	if isBodyType(typeExpr) {
		// Body parameters are bound whole; they carry no scalar model.
		return nil, nil
	}

	return nil, errorf(call.file, call.line, call.identity, call.handlerName,
		"parameter %q of type %s is neither path-bound, query-bound, nor a request body", name, typeText)
}

// scalarHint maps a declared Go type to a coercion hint. Float-typed
// parameters following the integer-identifier naming convention are
// narrowed to int.
func scalarHint(typeText, paramName string) (manifest.ScalarHint, bool) {
	switch typeText {
	case "string":
		return manifest.HintString, true
	case "bool":
		return manifest.HintBoolean, true
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64":
		return manifest.HintInt, true
	case "float32", "float64":
		if isIntegerIdentifier(paramName) {
			return manifest.HintInt, true
		}
		return manifest.HintNumber, true
	case "uuid.UUID":
		return manifest.HintUUID, true
	}
	return "", false
}

func isIntegerIdentifier(name string) bool {
	return name == "id" || strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID")
}

func isContextType(typeText string) bool {
	return typeText == "context.Context" || typeText == "*registry.Context" ||
		strings.HasSuffix(typeText, ".Invocation")
}

// isBodyType reports whether a parameter type can receive the decoded
// request body.
func isBodyType(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return true // named type in the same package
	case *ast.SelectorExpr:
		return true // qualified named type
	case *ast.StarExpr:
		return isBodyType(t.X)
	case *ast.ArrayType:
		return true
	case *ast.MapType:
		return true
	}
	return false
}

// returnMeta captures the raw return type and its payload after
// unwrapping one level of result wrapper.
func returnMeta(results *ast.FieldList) manifest.ReturnMeta {
	if results == nil || len(results.List) == 0 {
		return manifest.ReturnMeta{}
	}

	first := results.List[0].Type
	raw := typeString(first)
	if raw == "error" {
		return manifest.ReturnMeta{}
	}

	meta := manifest.ReturnMeta{Raw: raw, Unwrapped: raw}
	if inner, ok := unwrapResult(first); ok {
		meta.Unwrapped = typeString(inner)
	}
	return meta
}

func unwrapResult(expr ast.Expr) (ast.Expr, bool) {
	idx, ok := expr.(*ast.IndexExpr)
	if !ok {
		return nil, false
	}
	switch fun := idx.X.(type) {
	case *ast.Ident:
		if resultWrappers[fun.Name] {
			return idx.Index, true
		}
	case *ast.SelectorExpr:
		if resultWrappers[fun.Sel.Name] {
			return idx.Index, true
		}
	}
	return nil, false
}

// typeString renders a type expression to source text.
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + typeString(t.Elt)
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *ast.IndexExpr:
		return typeString(t.X) + "[" + typeString(t.Index) + "]"
	case *ast.InterfaceType:
		return "any"
	}
	return ""
}
