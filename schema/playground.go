package schema

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/celsowm/adorn-api-sub006/httperr"
)

// PlaygroundProvider backs the capability set with
// go-playground/validator for format validation. It is the default
// provider binding.
type PlaygroundProvider struct {
	validate *validator.Validate
}

// NewPlaygroundProvider creates the default provider.
func NewPlaygroundProvider() *PlaygroundProvider {
	return &PlaygroundProvider{validate: validator.New()}
}

type pgSchema struct {
	provider *PlaygroundProvider
	node     *Node
	optional bool
	coerce   bool
	fields   map[string]*pgSchema
	item     *pgSchema
}

func (p *PlaygroundProvider) scalar(typ, format string) *pgSchema {
	return &pgSchema{provider: p, node: &Node{Kind: KindScalar, Type: typ, Format: format}}
}

func (p *PlaygroundProvider) String() Schema  { return p.scalar("string", "") }
func (p *PlaygroundProvider) Number() Schema  { return p.scalar("number", "") }
func (p *PlaygroundProvider) Boolean() Schema { return p.scalar("boolean", "") }
func (p *PlaygroundProvider) Int() Schema     { return p.scalar("integer", "") }
func (p *PlaygroundProvider) UUID() Schema    { return p.scalar("string", "uuid") }
func (p *PlaygroundProvider) Email() Schema   { return p.scalar("string", "email") }

func (p *PlaygroundProvider) Any() Schema {
	return &pgSchema{provider: p, node: &Node{Kind: KindObject}}
}

func (p *PlaygroundProvider) Array(item Schema) Schema {
	inner := item.(*pgSchema)
	return &pgSchema{
		provider: p,
		node:     &Node{Kind: KindArray, Items: inner.node},
		item:     inner,
	}
}

func (p *PlaygroundProvider) Object(fields map[string]Schema) Schema {
	props := make(map[string]*Node, len(fields))
	inner := make(map[string]*pgSchema, len(fields))
	var required []string
	for name, field := range fields {
		fs := field.(*pgSchema)
		props[name] = fs.node
		inner[name] = fs
		if !fs.optional {
			required = append(required, name)
		}
	}
	return &pgSchema{
		provider: p,
		node:     &Node{Kind: KindObject, Properties: props, Required: required},
		fields:   inner,
	}
}

func (p *PlaygroundProvider) Optional(s Schema) Schema {
	cp := s.(*pgSchema).clone()
	cp.optional = true
	return cp
}

func (p *PlaygroundProvider) Nullable(s Schema) Schema {
	cp := s.(*pgSchema).clone()
	cp.node.Nullable = true
	return cp
}

func (p *PlaygroundProvider) MinLength(s Schema, n int) Schema {
	cp := s.(*pgSchema).clone()
	cp.node.MinLength = &n
	return cp
}

func (p *PlaygroundProvider) CoerceNumber(s Schema) Schema {
	cp := s.(*pgSchema).clone()
	cp.coerce = true
	return cp
}

func (p *PlaygroundProvider) ToSchemaRef(name string, s Schema) Schema {
	inner := s.(*pgSchema)
	return &pgSchema{
		provider: p,
		node:     &Node{Kind: KindRef, Ref: name},
		fields:   inner.fields,
		item:     inner.item,
	}
}

func (s *pgSchema) clone() *pgSchema {
	nodeCopy := *s.node
	return &pgSchema{
		provider: s.provider,
		node:     &nodeCopy,
		optional: s.optional,
		coerce:   s.coerce,
		fields:   s.fields,
		item:     s.item,
	}
}

func (s *pgSchema) Node() *Node { return s.node }

// Arity reports the number of declared path-parameter fields, used by
// the manifest builder to cross-check static hints. Schemas without a
// params section make no claim.
func (s *pgSchema) Arity() int {
	if params, ok := s.fields["params"]; ok && params.node.Kind == KindObject {
		return len(params.fields)
	}
	return 0
}

// Parse validates data against the schema. A nil result means success.
func (s *pgSchema) Parse(data any) []httperr.Issue {
	return s.parseAt("", data)
}

func (s *pgSchema) parseAt(path string, data any) []httperr.Issue {
	if data == nil {
		if s.optional || s.node.Nullable {
			return nil
		}
		return []httperr.Issue{{Path: path, Message: "value is required"}}
	}

	switch s.node.Kind {
	case KindObject:
		return s.parseObject(path, data)
	case KindArray:
		return s.parseArray(path, data)
	case KindRef:
		return nil
	default:
		return s.parseScalar(path, data)
	}
}

func (s *pgSchema) parseObject(path string, data any) []httperr.Issue {
	if len(s.fields) == 0 {
		return nil
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return []httperr.Issue{{Path: path, Message: "expected an object"}}
	}

	var issues []httperr.Issue
	for name, field := range s.fields {
		value, present := obj[name]
		childPath := joinPath(path, name)
		if !present {
			if !field.optional {
				issues = append(issues, httperr.Issue{Path: childPath, Message: "field is required"})
			}
			continue
		}
		issues = append(issues, field.parseAt(childPath, value)...)
	}
	return issues
}

func (s *pgSchema) parseArray(path string, data any) []httperr.Issue {
	items, ok := data.([]any)
	if !ok {
		return []httperr.Issue{{Path: path, Message: "expected an array"}}
	}
	var issues []httperr.Issue
	for i, item := range items {
		issues = append(issues, s.item.parseAt(fmt.Sprintf("%s[%d]", path, i), item)...)
	}
	return issues
}

func (s *pgSchema) parseScalar(path string, data any) []httperr.Issue {
	switch s.node.Type {
	case "string":
		str, ok := data.(string)
		if !ok {
			return []httperr.Issue{{Path: path, Message: "expected a string"}}
		}
		return s.validateString(path, str)
	case "integer":
		return s.validateInteger(path, data)
	case "number":
		return s.validateNumber(path, data)
	case "boolean":
		if _, ok := data.(bool); ok {
			return nil
		}
		if str, ok := data.(string); ok && s.coerce {
			if _, err := strconv.ParseBool(str); err == nil {
				return nil
			}
		}
		return []httperr.Issue{{Path: path, Message: "expected a boolean"}}
	}
	return nil
}

func (s *pgSchema) validateString(path, value string) []httperr.Issue {
	if s.node.MinLength != nil && len(value) < *s.node.MinLength {
		return []httperr.Issue{{
			Path:    path,
			Message: fmt.Sprintf("must be at least %d characters", *s.node.MinLength),
		}}
	}
	switch s.node.Format {
	case "uuid":
		if err := s.provider.validate.Var(value, "uuid4"); err != nil {
			return []httperr.Issue{{Path: path, Message: "must be a valid UUID"}}
		}
	case "email":
		if err := s.provider.validate.Var(value, "email"); err != nil {
			return []httperr.Issue{{Path: path, Message: "must be a valid email address"}}
		}
	}
	return nil
}

func (s *pgSchema) validateInteger(path string, data any) []httperr.Issue {
	switch v := data.(type) {
	case int, int32, int64:
		return nil
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
	case string:
		if s.coerce {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				return nil
			}
		}
	}
	return []httperr.Issue{{Path: path, Message: "expected an integer"}}
}

func (s *pgSchema) validateNumber(path string, data any) []httperr.Issue {
	switch v := data.(type) {
	case int, int32, int64, float32, float64:
		return nil
	case string:
		if s.coerce {
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				return nil
			}
		}
	}
	return []httperr.Issue{{Path: path, Message: "expected a number"}}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
