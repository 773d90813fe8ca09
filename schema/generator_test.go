package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celsowm/adorn-api-sub006/manifest"
)

func sampleRoutes() []manifest.RouteDefinition {
	return []manifest.RouteDefinition{
		{
			Controller: "PetController",
			HandlerID:  "PetController.GetPet",
			Method:     "GET",
			Path:       "/{id}",
			FullPath:   "/pets/{id}",
			Params: []manifest.ParamModel{
				{Name: "id", TypeText: "int64", In: "path", Hint: manifest.HintInt},
			},
			Response: manifest.ResponseMeta{Status: 200, TypeText: "Pet"},
			Return:   manifest.ReturnMeta{Raw: "Pet", Unwrapped: "Pet"},
			Tags:     []string{"pets"},
			Summary:  "Fetch one pet",
		},
		{
			Controller: "PetController",
			HandlerID:  "PetController.CreatePet",
			Method:     "POST",
			Path:       "/",
			FullPath:   "/pets",
			Bindings:   []manifest.ArgBinding{{Index: 1, Kind: manifest.BindBody}},
			Response:   manifest.ResponseMeta{Status: 201, TypeText: "Pet"},
			Return:     manifest.ReturnMeta{Raw: "Result[Pet]", Unwrapped: "Pet"},
		},
		{
			Controller: "PetController",
			HandlerID:  "PetController.DeletePet",
			Method:     "DELETE",
			Path:       "/{id}",
			FullPath:   "/pets/{id}",
			Params: []manifest.ParamModel{
				{Name: "id", TypeText: "int64", In: "path", Hint: manifest.HintInt},
			},
			Response: manifest.ResponseMeta{Status: 204},
		},
	}
}

func newTestGenerator() *Generator {
	return NewGenerator(NewPlaygroundProvider(), Info{Title: "Petstore", Version: "1.0.0"})
}

func TestGenerateDocumentShape(t *testing.T) {
	doc := newTestGenerator().Generate(sampleRoutes())

	assert.Equal(t, "3.0.1", doc.OpenAPI)
	assert.Equal(t, "Petstore", doc.Info.Title)

	require.Contains(t, doc.Paths, "/pets/{id}")
	require.Contains(t, doc.Paths, "/pets")
	assert.Contains(t, doc.Paths["/pets/{id}"], "get")
	assert.Contains(t, doc.Paths["/pets/{id}"], "delete")
	assert.Contains(t, doc.Paths["/pets"], "post")
}

func TestGenerateOperationDetails(t *testing.T) {
	doc := newTestGenerator().Generate(sampleRoutes())

	get := doc.Paths["/pets/{id}"]["get"]
	assert.Equal(t, "PetController_GetPet", get.OperationID)
	assert.Equal(t, "Fetch one pet", get.Summary)
	assert.Equal(t, []string{"pets"}, get.Tags)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, "id", get.Parameters[0].Name)
	assert.Equal(t, "path", get.Parameters[0].In)
	assert.True(t, get.Parameters[0].Required)
	assert.Equal(t, "integer", get.Parameters[0].Schema["type"])

	success := get.Responses["200"]
	require.NotNil(t, success)
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/Pet"},
		success.Content["application/json"].Schema)
}

func TestGenerateRequestBodyAndStatuses(t *testing.T) {
	doc := newTestGenerator().Generate(sampleRoutes())

	post := doc.Paths["/pets"]["post"]
	require.NotNil(t, post.RequestBody)
	assert.True(t, post.RequestBody.Required)
	assert.Contains(t, post.Responses, "201")

	del := doc.Paths["/pets/{id}"]["delete"]
	require.Contains(t, del.Responses, "204")
	assert.Nil(t, del.Responses["204"].Content, "204 has no response body")
}

func TestGenerateErrorResponses(t *testing.T) {
	doc := newTestGenerator().Generate(sampleRoutes())

	get := doc.Paths["/pets/{id}"]["get"]
	require.Contains(t, get.Responses, "400")
	require.Contains(t, get.Responses, "500")

	assert.Contains(t, doc.Components.Schemas, "ValidationError")
	assert.Contains(t, doc.Components.Schemas, "ProblemDetails")
	assert.Contains(t, doc.Components.Schemas, "Pet")
}

func TestGenerateArrayReturn(t *testing.T) {
	routes := []manifest.RouteDefinition{{
		Controller: "PetController",
		HandlerID:  "PetController.ListPets",
		Method:     "GET",
		FullPath:   "/pets",
		Response:   manifest.ResponseMeta{Status: 200, TypeText: "[]Pet"},
	}}
	doc := newTestGenerator().Generate(routes)

	resp := doc.Paths["/pets"]["get"].Responses["200"]
	schema := resp.Content["application/json"].Schema
	assert.Equal(t, "array", schema["type"])
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/Pet"}, schema["items"])
}

func TestDocumentJSONDeterministic(t *testing.T) {
	gen := newTestGenerator()
	first, err := gen.Generate(sampleRoutes()).JSON()
	require.NoError(t, err)
	second, err := gen.Generate(sampleRoutes()).JSON()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(first, &parsed))
}

func TestDocumentYAML(t *testing.T) {
	data, err := newTestGenerator().Generate(sampleRoutes()).YAML()
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "openapi:"))
	assert.Contains(t, text, "/pets/{id}")
}

func TestMergeComponentsLastWins(t *testing.T) {
	a := &Document{
		Paths:      map[string]map[string]*Operation{},
		Components: Components{Schemas: map[string]any{"Pet": map[string]any{"type": "object"}}},
	}
	b := &Document{
		Paths:      map[string]map[string]*Operation{"/x": {"get": &Operation{OperationID: "x"}}},
		Components: Components{Schemas: map[string]any{"Pet": map[string]any{"type": "string"}}},
	}
	a.Merge(b)

	assert.Equal(t, map[string]any{"type": "string"}, a.Components.Schemas["Pet"])
	assert.Contains(t, a.Paths, "/x")
}

func TestComponentName(t *testing.T) {
	assert.Equal(t, "Pet", componentName("Pet"))
	assert.Equal(t, "Pet", componentName("[]Pet"))
	assert.Equal(t, "Pet", componentName("*models.Pet"))
	assert.Equal(t, "", componentName("any"))
	assert.Equal(t, "", componentName(""))
	assert.Equal(t, "", componentName("map[string]int"))
}
