package analyzer

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

var httpVerbs = map[string]string{
	"GET":    "GET",
	"POST":   "POST",
	"PUT":    "PUT",
	"DELETE": "DELETE",
	"PATCH":  "PATCH",
}

// registrationCall is one extracted metadata call: either a controller
// declaration or a verb declaration.
type registrationCall struct {
	controllerDecl *manifest.ControllerDefinition

	verb        string
	identity    string
	path        string
	handlerName string
	opts        []ast.Expr
	file        string
	line        int
}

// registrationCalls walks every function body in a file and extracts
// metadata registration calls in source order.
func (pa *packageAnalyzer) registrationCalls(file *ast.File) ([]*registrationCall, error) {
	var calls []*registrationCall
	var walkErr error

	ast.Inspect(file, func(n ast.Node) bool {
		if walkErr != nil {
			return false
		}
		callExpr, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		call, err := pa.extractCall(callExpr, file)
		if err != nil {
			walkErr = err
			return false
		}
		if call != nil {
			calls = append(calls, call)
		}
		return true
	})

	return calls, walkErr
}

func (pa *packageAnalyzer) extractCall(callExpr *ast.CallExpr, file *ast.File) (*registrationCall, error) {
	selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, nil
	}

	if selExpr.Sel.Name == "DeclareController" {
		return pa.extractControllerDecl(callExpr)
	}

	pkgIdent, ok := selExpr.X.(*ast.Ident)
	if !ok {
		return nil, nil
	}
	if _, ok := pa.aliases[file][pkgIdent.Name]; !ok {
		return nil, nil
	}

	name := selExpr.Sel.Name
	if verb, ok := httpVerbs[name]; ok {
		// metadata.VERB(collector, identity, path, handler, opts...)
		return pa.extractVerbCall(callExpr, verb, 1)
	}
	if name == "Route" {
		// metadata.Route(collector, identity, verb, path, handler, opts...)
		if len(callExpr.Args) < 5 {
			return nil, nil
		}
		fn, ln := pa.position(callExpr.Pos())
		verb, ok := pa.stringArg(callExpr.Args[2])
		if !ok {
			return nil, errorf(fn, ln, "", "", "route verb must be a statically known string")
		}
		call, err := pa.extractVerbCallAt(callExpr, strings.ToUpper(verb), 1, 3, 4, 5)
		return call, err
	}
	return nil, nil
}

func (pa *packageAnalyzer) extractControllerDecl(callExpr *ast.CallExpr) (*registrationCall, error) {
	if len(callExpr.Args) < 2 {
		return nil, nil
	}
	fn, ln := pa.position(callExpr.Pos())

	identity, ok := pa.stringArg(callExpr.Args[0])
	if !ok {
		return nil, errorf(fn, ln, "", "", "controller identity must be a statically known string")
	}
	basePath, ok := pa.stringArg(callExpr.Args[1])
	if !ok {
		return nil, errorf(fn, ln, identity, "", "controller base path must be a statically known string")
	}

	def := &manifest.ControllerDefinition{
		Name:     identity,
		BasePath: manifest.NormalizePath(basePath),
	}
	for _, arg := range callExpr.Args[2:] {
		if tag, ok := pa.stringArg(arg); ok {
			def.Tags = append(def.Tags, tag)
		}
	}
	return &registrationCall{controllerDecl: def}, nil
}

func (pa *packageAnalyzer) extractVerbCall(callExpr *ast.CallExpr, verb string, identityIdx int) (*registrationCall, error) {
	return pa.extractVerbCallAt(callExpr, verb, identityIdx, identityIdx+1, identityIdx+2, identityIdx+3)
}

func (pa *packageAnalyzer) extractVerbCallAt(callExpr *ast.CallExpr, verb string, identityIdx, pathIdx, handlerIdx, optsIdx int) (*registrationCall, error) {
	if len(callExpr.Args) <= handlerIdx {
		return nil, nil
	}
	fn, ln := pa.position(callExpr.Pos())

	identity, ok := pa.stringArg(callExpr.Args[identityIdx])
	if !ok {
		return nil, errorf(fn, ln, "", "", "controller identity must be a statically known string")
	}
	path, ok := pa.stringArg(callExpr.Args[pathIdx])
	if !ok {
		return nil, errorf(fn, ln, identity, "", "route path must be a statically known string literal")
	}

	handlerSel, ok := callExpr.Args[handlerIdx].(*ast.SelectorExpr)
	if !ok {
		return nil, errorf(fn, ln, identity, "", "route handler must be a method selector")
	}

	call := &registrationCall{
		verb:        verb,
		identity:    identity,
		path:        path,
		handlerName: handlerSel.Sel.Name,
		file:        fn,
		line:        ln,
	}
	if len(callExpr.Args) > optsIdx {
		call.opts = callExpr.Args[optsIdx:]
	}
	return call, nil
}

// stringArg resolves a string literal or a package-level string
// constant reference.
func (pa *packageAnalyzer) stringArg(expr ast.Expr) (string, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			return strings.Trim(e.Value, `"`), true
		}
	case *ast.Ident:
		if value, ok := pa.constants[e.Name]; ok {
			return value, true
		}
	}
	return "", false
}

// resolveRoute turns a verb registration call into the analyzer route
// match plus the statically visible method metadata.
func (pa *packageAnalyzer) resolveRoute(call *registrationCall) (*manifest.RouteMatch, *manifest.MethodMeta, error) {
	funcDecl := pa.findMethod(call.identity, call.handlerName)
	if funcDecl == nil {
		return nil, nil, errorf(call.file, call.line, call.identity, call.handlerName,
			"handler method not found on controller struct")
	}

	params, ret, err := pa.analyzeSignature(funcDecl, call)
	if err != nil {
		return nil, nil, err
	}

	match := &manifest.RouteMatch{
		Controller: call.identity,
		Method:     call.handlerName,
		Verb:       call.verb,
		Path:       manifest.NormalizePath(call.path),
		Params:     params,
		Return:     ret,
		File:       call.file,
		Line:       call.line,
	}

	meta := &manifest.MethodMeta{
		Name:       call.handlerName,
		HTTPMethod: call.verb,
		Path:       manifest.NormalizePath(call.path),
	}
	for _, opt := range call.opts {
		pa.applyOption(opt, meta)
	}
	return match, meta, nil
}

// findMethod locates a method declaration on the named struct across
// all files of the package.
func (pa *packageAnalyzer) findMethod(structName, methodName string) *ast.FuncDecl {
	for _, file := range pa.files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Name.Name != methodName {
				continue
			}
			if isMethodOnStruct(funcDecl.Recv, structName) {
				return funcDecl
			}
		}
	}
	return nil
}

func isMethodOnStruct(recv *ast.FieldList, structName string) bool {
	if recv == nil || len(recv.List) == 0 {
		return false
	}
	switch t := recv.List[0].Type.(type) {
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name == structName
		}
	case *ast.Ident:
		return t.Name == structName
	}
	return false
}

// applyOption extracts statically visible metadata from option calls
// such as WithTags and WithSummary. Runtime-only options (guards,
// middlewares, schemas) are invisible here and reconciled at boot.
func (pa *packageAnalyzer) applyOption(arg ast.Expr, meta *manifest.MethodMeta) {
	callExpr, ok := arg.(*ast.CallExpr)
	if !ok {
		return
	}
	selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	switch selExpr.Sel.Name {
	case "WithTags":
		for _, a := range callExpr.Args {
			if tag, ok := pa.stringArg(a); ok {
				meta.Tags = append(meta.Tags, tag)
			}
		}
	case "WithSummary":
		if len(callExpr.Args) > 0 {
			if summary, ok := pa.stringArg(callExpr.Args[0]); ok {
				meta.Summary = summary
			}
		}
	case "WithStatus":
		if len(callExpr.Args) > 0 {
			if status, ok := intLiteral(callExpr.Args[0]); ok {
				meta.StatusOverride = status
			}
		}
	case "WithBindings":
		for _, a := range callExpr.Args {
			if binding, ok := pa.extractBinding(a); ok {
				meta.Bindings = append(meta.Bindings, binding)
			}
		}
	}
}

// extractBinding resolves binding constructor calls such as
// metadata.Param(1, "id") into ArgBinding values.
func (pa *packageAnalyzer) extractBinding(arg ast.Expr) (manifest.ArgBinding, bool) {
	callExpr, ok := arg.(*ast.CallExpr)
	if !ok {
		return manifest.ArgBinding{}, false
	}
	selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
	if !ok || len(callExpr.Args) == 0 {
		return manifest.ArgBinding{}, false
	}

	index, ok := intLiteral(callExpr.Args[0])
	if !ok {
		return manifest.ArgBinding{}, false
	}

	kinds := map[string]manifest.BindingKind{
		"Ctx":    manifest.BindContext,
		"Param":  manifest.BindParams,
		"Query":  manifest.BindQuery,
		"Body":   manifest.BindBody,
		"Header": manifest.BindHeaders,
		"State":  manifest.BindState,
	}
	kind, ok := kinds[selExpr.Sel.Name]
	if !ok {
		return manifest.ArgBinding{}, false
	}

	binding := manifest.ArgBinding{Index: index, Kind: kind}
	if len(callExpr.Args) > 1 {
		if name, ok := pa.stringArg(callExpr.Args[1]); ok {
			binding.Name = name
		}
	}
	return binding, true
}

func intLiteral(expr ast.Expr) (int, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, false
	}
	return n, true
}
