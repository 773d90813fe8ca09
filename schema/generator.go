package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

// Info is the document info section.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Parameter is one path or query parameter of an operation.
type Parameter struct {
	Name     string         `json:"name" yaml:"name"`
	In       string         `json:"in" yaml:"in"`
	Required bool           `json:"required" yaml:"required"`
	Schema   map[string]any `json:"schema" yaml:"schema"`
}

// MediaType wraps a schema for one content type.
type MediaType struct {
	Schema map[string]any `json:"schema" yaml:"schema"`
}

// RequestBody describes an operation request body.
type RequestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]MediaType `json:"content" yaml:"content"`
}

// ResponseObject describes one response status.
type ResponseObject struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// Operation is one HTTP method under a path.
type Operation struct {
	OperationID string                     `json:"operationId" yaml:"operationId"`
	Summary     string                     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string                   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter                `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody               `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]*ResponseObject `json:"responses" yaml:"responses"`
}

// Components holds the shared schema map.
type Components struct {
	Schemas map[string]any `json:"schemas" yaml:"schemas"`
}

// Document is the OpenAPI-shaped output. It is fully serializable and
// carries no provider-internal state.
type Document struct {
	OpenAPI    string                           `json:"openapi" yaml:"openapi"`
	Info       Info                             `json:"info" yaml:"info"`
	Paths      map[string]map[string]*Operation `json:"paths" yaml:"paths"`
	Components Components                       `json:"components" yaml:"components"`
}

// JSON renders the document as formatted JSON. Map keys serialize in
// sorted order, so output is deterministic.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML renders the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// Merge folds another document's paths and components into this one.
// On a components.schemas key collision the merged-in document wins;
// this ordering is deliberate and documented, not incidental.
func (d *Document) Merge(other *Document) {
	for path, ops := range other.Paths {
		if _, ok := d.Paths[path]; !ok {
			d.Paths[path] = make(map[string]*Operation, len(ops))
		}
		for method, op := range ops {
			d.Paths[path][method] = op
		}
	}
	for name, node := range other.Components.Schemas {
		d.Components.Schemas[name] = node
	}
}

// Generator projects route definitions into a Document through a
// provider.
type Generator struct {
	provider Provider
	info     Info
}

// NewGenerator creates a generator bound to one provider.
func NewGenerator(provider Provider, info Info) *Generator {
	return &Generator{provider: provider, info: info}
}

// Generate builds one document from the routes, generating a fragment
// per controller and merging the fragments in controller order.
func (g *Generator) Generate(routes []manifest.RouteDefinition) *Document {
	doc := g.emptyDocument()
	doc.Components.Schemas["ValidationError"] = validationErrorSchema()
	doc.Components.Schemas["ProblemDetails"] = problemDetailsSchema()

	byController := make(map[string][]manifest.RouteDefinition)
	var order []string
	for _, route := range routes {
		if _, ok := byController[route.Controller]; !ok {
			order = append(order, route.Controller)
		}
		byController[route.Controller] = append(byController[route.Controller], route)
	}

	for _, controller := range order {
		doc.Merge(g.controllerFragment(byController[controller]))
	}
	return doc
}

func (g *Generator) emptyDocument() *Document {
	return &Document{
		OpenAPI:    "3.0.1",
		Info:       g.info,
		Paths:      make(map[string]map[string]*Operation),
		Components: Components{Schemas: make(map[string]any)},
	}
}

func (g *Generator) controllerFragment(routes []manifest.RouteDefinition) *Document {
	frag := g.emptyDocument()
	for i := range routes {
		route := &routes[i]
		op := g.operation(route, frag)
		method := strings.ToLower(route.Method)
		if _, ok := frag.Paths[route.FullPath]; !ok {
			frag.Paths[route.FullPath] = make(map[string]*Operation)
		}
		frag.Paths[route.FullPath][method] = op
	}
	return frag
}

func (g *Generator) operation(route *manifest.RouteDefinition, frag *Document) *Operation {
	op := &Operation{
		OperationID: operationID(route),
		Summary:     route.Summary,
		Tags:        route.Tags,
		Responses:   make(map[string]*ResponseObject),
	}

	for _, param := range route.Params {
		op.Parameters = append(op.Parameters, Parameter{
			Name:     param.Name,
			In:       param.In,
			Required: param.In == "path" || !param.Optional,
			Schema:   g.hintSchema(param.Hint).Node().OpenAPI(),
		})
	}

	if hasBodyBinding(route) {
		op.RequestBody = &RequestBody{
			Required: true,
			Content: map[string]MediaType{
				"application/json": {Schema: g.bodySchema(route)},
			},
		}
	}

	op.Responses[strconv.Itoa(route.Response.Status)] = g.successResponse(route, frag)
	if len(route.Params) > 0 || route.Schema != nil || hasBodyBinding(route) {
		op.Responses["400"] = &ResponseObject{
			Description: "Validation failed",
			Content: map[string]MediaType{
				"application/json": {Schema: refSchema("ValidationError")},
			},
		}
	}
	op.Responses["500"] = &ResponseObject{
		Description: "Internal server error",
		Content: map[string]MediaType{
			"application/json": {Schema: refSchema("ProblemDetails")},
		},
	}
	return op
}

func (g *Generator) successResponse(route *manifest.RouteDefinition, frag *Document) *ResponseObject {
	resp := &ResponseObject{Description: responseDescription(route.Method)}
	if route.Response.Status == 204 {
		return resp
	}

	name := componentName(route.Response.TypeText)
	if name == "" {
		resp.Content = map[string]MediaType{
			"application/json": {Schema: g.provider.Any().Node().OpenAPI()},
		}
		return resp
	}

	if _, ok := frag.Components.Schemas[name]; !ok {
		frag.Components.Schemas[name] = g.provider.Any().Node().OpenAPI()
	}
	body := refSchema(name)
	if strings.HasPrefix(route.Response.TypeText, "[]") {
		body = map[string]any{"type": "array", "items": refSchema(name)}
	}
	resp.Content = map[string]MediaType{"application/json": {Schema: body}}
	return resp
}

// bodySchema prefers the body section of an attached validation
// schema; without one a free-form object is emitted.
func (g *Generator) bodySchema(route *manifest.RouteDefinition) map[string]any {
	if s, ok := route.Schema.(Schema); ok {
		node := s.Node()
		if node.Kind == KindObject {
			if body, ok := node.Properties["body"]; ok {
				return body.OpenAPI()
			}
			return node.OpenAPI()
		}
	}
	return g.provider.Any().Node().OpenAPI()
}

func (g *Generator) hintSchema(hint manifest.ScalarHint) Schema {
	switch hint {
	case manifest.HintInt:
		return g.provider.Int()
	case manifest.HintNumber:
		return g.provider.Number()
	case manifest.HintBoolean:
		return g.provider.Boolean()
	case manifest.HintUUID:
		return g.provider.UUID()
	default:
		return g.provider.String()
	}
}

func hasBodyBinding(route *manifest.RouteDefinition) bool {
	for _, b := range route.Bindings {
		if b.Kind == manifest.BindBody {
			return true
		}
	}
	return false
}

func operationID(route *manifest.RouteDefinition) string {
	if route.HandlerID != "" {
		return strings.ReplaceAll(route.HandlerID, ".", "_")
	}
	clean := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(route.FullPath)
	return fmt.Sprintf("%s%s", strings.ToLower(route.Method), clean)
}

// componentName derives a components.schemas key from a return type
// text, or "" when the type is anonymous.
func componentName(typeText string) string {
	name := strings.TrimPrefix(typeText, "[]")
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "any" || strings.ContainsAny(name, "[]{}") {
		return ""
	}
	return name
}

func responseDescription(method string) string {
	switch method {
	case "POST":
		return "Resource created"
	case "DELETE":
		return "Resource deleted"
	case "PUT", "PATCH":
		return "Resource updated"
	default:
		return "Successful response"
	}
}

func refSchema(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func validationErrorSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"error", "issues"},
		"properties": map[string]any{
			"error": map[string]any{"type": "string"},
			"issues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source":  map[string]any{"type": "string"},
						"path":    map[string]any{"type": "string"},
						"message": map[string]any{"type": "string"},
					},
					"required": []string{"source", "message"},
				},
			},
		},
	}
}

func problemDetailsSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"title", "status"},
		"properties": map[string]any{
			"type":     map[string]any{"type": "string"},
			"title":    map[string]any{"type": "string"},
			"status":   map[string]any{"type": "integer"},
			"detail":   map[string]any{"type": "string"},
			"instance": map[string]any{"type": "string"},
		},
	}
}
