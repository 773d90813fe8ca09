package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarNodes(t *testing.T) {
	p := NewPlaygroundProvider()

	assert.Equal(t, "string", p.String().Node().Type)
	assert.Equal(t, "integer", p.Int().Node().Type)
	assert.Equal(t, "number", p.Number().Node().Type)
	assert.Equal(t, "boolean", p.Boolean().Node().Type)
	assert.Equal(t, "uuid", p.UUID().Node().Format)
	assert.Equal(t, "email", p.Email().Node().Format)
}

func TestObjectRequiredTracking(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.Object(map[string]Schema{
		"name": p.String(),
		"note": p.Optional(p.String()),
	})

	node := s.Node()
	assert.Equal(t, KindObject, node.Kind)
	assert.Equal(t, []string{"name"}, node.Required)
}

func TestModifiersDoNotMutateOriginal(t *testing.T) {
	p := NewPlaygroundProvider()
	base := p.String()
	withMin := p.MinLength(base, 3)
	nullable := p.Nullable(base)

	assert.Nil(t, base.Node().MinLength)
	assert.False(t, base.Node().Nullable)
	require.NotNil(t, withMin.Node().MinLength)
	assert.Equal(t, 3, *withMin.Node().MinLength)
	assert.True(t, nullable.Node().Nullable)
}

func TestParseObject(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.Object(map[string]Schema{
		"name":  p.MinLength(p.String(), 2),
		"email": p.Optional(p.Email()),
	})

	assert.Empty(t, s.Parse(map[string]any{"name": "ok"}))

	issues := s.Parse(map[string]any{})
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].Path)
	assert.Equal(t, "field is required", issues[0].Message)

	issues = s.Parse(map[string]any{"name": "x"})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "at least 2 characters")

	issues = s.Parse(map[string]any{"name": "ok", "email": "not-an-email"})
	require.Len(t, issues, 1)
	assert.Equal(t, "email", issues[0].Path)

	issues = s.Parse("not an object")
	require.Len(t, issues, 1)
	assert.Equal(t, "expected an object", issues[0].Message)
}

func TestParseNestedPaths(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.Object(map[string]Schema{
		"body": p.Object(map[string]Schema{
			"name": p.String(),
		}),
	})

	issues := s.Parse(map[string]any{"body": map[string]any{}})
	require.Len(t, issues, 1)
	assert.Equal(t, "body.name", issues[0].Path)
}

func TestParseArray(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.Array(p.Int())

	assert.Empty(t, s.Parse([]any{float64(1), float64(2)}))

	issues := s.Parse([]any{float64(1), "two"})
	require.Len(t, issues, 1)
	assert.Equal(t, "[1]", issues[0].Path)
}

func TestIntegerAcceptsWholeFloats(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.Int()

	assert.Empty(t, s.Parse(float64(3)))
	assert.NotEmpty(t, s.Parse(float64(3.5)))
	assert.NotEmpty(t, s.Parse("3"))
}

func TestCoerceNumberAcceptsNumericStrings(t *testing.T) {
	p := NewPlaygroundProvider()

	assert.Empty(t, p.CoerceNumber(p.Int()).Parse("42"))
	assert.NotEmpty(t, p.CoerceNumber(p.Int()).Parse("abc"))
	assert.Empty(t, p.CoerceNumber(p.Number()).Parse("2.5"))
	assert.Empty(t, p.CoerceNumber(p.Boolean()).Parse("true"))
}

func TestNullableAndOptional(t *testing.T) {
	p := NewPlaygroundProvider()

	assert.NotEmpty(t, p.String().Parse(nil))
	assert.Empty(t, p.Nullable(p.String()).Parse(nil))
	assert.Empty(t, p.Optional(p.String()).Parse(nil))
}

func TestUUIDValidation(t *testing.T) {
	p := NewPlaygroundProvider()
	s := p.UUID()

	assert.Empty(t, s.Parse("7f9c24e8-3b12-4fef-91e0-5c3b412d7a4d"))
	assert.NotEmpty(t, s.Parse("not-a-uuid"))
}

func TestArityCountsParamsFields(t *testing.T) {
	p := NewPlaygroundProvider()

	withParams := p.Object(map[string]Schema{
		"params": p.Object(map[string]Schema{
			"id":  p.CoerceNumber(p.Int()),
			"sub": p.String(),
		}),
	})
	assert.Equal(t, 2, withParams.(*pgSchema).Arity())

	bodyOnly := p.Object(map[string]Schema{
		"body": p.Object(map[string]Schema{"name": p.String()}),
	})
	assert.Equal(t, 0, bodyOnly.(*pgSchema).Arity())
}

func TestToSchemaRef(t *testing.T) {
	p := NewPlaygroundProvider()
	ref := p.ToSchemaRef("Pet", p.Object(map[string]Schema{"name": p.String()}))

	node := ref.Node()
	assert.Equal(t, KindRef, node.Kind)
	assert.Equal(t, "Pet", node.Ref)
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/Pet"}, node.OpenAPI())
}
