package schema

import "github.com/celsowm/adorn-api-sub006/manifest"

// Schema couples a validation capability with its public node
// projection. Implementations come from exactly one Provider per
// document.
type Schema interface {
	manifest.ValidationSchema
	Node() *Node
}

// Provider is the fixed capability set every validation-library
// binding must implement. The generator is provider-agnostic: two
// conforming providers produce equivalent documents. The set is
// closed; bindings wrap their library behind exactly these
// operations and never extend them ad hoc.
type Provider interface {
	String() Schema
	Number() Schema
	Boolean() Schema
	Int() Schema
	UUID() Schema
	Email() Schema
	Any() Schema
	Array(item Schema) Schema
	Object(fields map[string]Schema) Schema
	Optional(s Schema) Schema
	Nullable(s Schema) Schema
	MinLength(s Schema, n int) Schema
	CoerceNumber(s Schema) Schema
	ToSchemaRef(name string, s Schema) Schema
}
