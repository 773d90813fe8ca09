// Package schema projects route definitions into an OpenAPI-shaped
// document through a fixed provider capability set. Any validation
// library wrapped behind the Provider interface yields equivalent
// documents.
package schema

import "sort"

// Kind tags the variant of a schema node.
type Kind string

const (
	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindScalar Kind = "scalar"
	KindRef    Kind = "ref"
)

// Node is one fragment of an OpenAPI schema tree. It is the public,
// serializable projection; provider-internal state never appears here.
type Node struct {
	Kind       Kind
	Type       string // scalar: string, integer, number, boolean
	Format     string
	Nullable   bool
	MinLength  *int
	Items      *Node
	Properties map[string]*Node
	Required   []string
	Ref        string
}

// OpenAPI renders the node as a plain map ready for JSON or YAML
// serialization.
func (n *Node) OpenAPI() map[string]any {
	if n == nil {
		return map[string]any{"type": "object"}
	}

	switch n.Kind {
	case KindRef:
		return map[string]any{"$ref": "#/components/schemas/" + n.Ref}
	case KindArray:
		return withCommon(n, map[string]any{
			"type":  "array",
			"items": n.Items.OpenAPI(),
		})
	case KindObject:
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = child.OpenAPI()
		}
		out := map[string]any{"type": "object"}
		if len(props) > 0 {
			out["properties"] = props
		}
		if len(n.Required) > 0 {
			required := append([]string(nil), n.Required...)
			sort.Strings(required)
			out["required"] = required
		}
		return withCommon(n, out)
	default:
		out := map[string]any{"type": n.Type}
		if n.Format != "" {
			out["format"] = n.Format
		}
		if n.MinLength != nil {
			out["minLength"] = *n.MinLength
		}
		return withCommon(n, out)
	}
}

func withCommon(n *Node, out map[string]any) map[string]any {
	if n.Nullable {
		out["nullable"] = true
	}
	return out
}
