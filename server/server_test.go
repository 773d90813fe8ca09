package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celsowm/adorn-api-sub006/config"
	"github.com/celsowm/adorn-api-sub006/httperr"
	"github.com/celsowm/adorn-api-sub006/logger"
	"github.com/celsowm/adorn-api-sub006/manifest"
	"github.com/celsowm/adorn-api-sub006/registry"
	"github.com/celsowm/adorn-api-sub006/schema"
)

type pet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func petRoutes(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(logger.NewNop())

	idParam := manifest.ParamModel{Name: "id", TypeText: "int64", In: "path", Hint: manifest.HintInt}
	require.NoError(t, reg.Register(manifest.RouteDefinition{
		Controller: "PetController", HandlerID: "PetController.GetPet",
		Method: "GET", Path: "/pets/{id}", FullPath: "/pets/{id}",
		Params:   []manifest.ParamModel{idParam},
		Response: manifest.ResponseMeta{Status: 200, TypeText: "pet"},
		Handler: func(ctx context.Context, id int64) (pet, error) {
			if id == 404 {
				return pet{}, httperr.NewNotFoundError("pet")
			}
			return pet{ID: id, Name: "rex"}, nil
		},
	}))
	require.NoError(t, reg.Register(manifest.RouteDefinition{
		Controller: "PetController", HandlerID: "PetController.CreatePet",
		Method: "POST", Path: "/pets", FullPath: "/pets",
		Response: manifest.ResponseMeta{Status: 201, TypeText: "pet"},
		Handler: func(ctx context.Context, body pet) (pet, error) {
			body.ID = 1
			return body, nil
		},
	}))
	require.NoError(t, reg.Register(manifest.RouteDefinition{
		Controller: "PetController", HandlerID: "PetController.DeletePet",
		Method: "DELETE", Path: "/pets/{id}", FullPath: "/pets/{id}",
		Params:   []manifest.ParamModel{idParam},
		Response: manifest.ResponseMeta{Status: 204},
		Handler:  func(ctx context.Context, id int64) error { return nil },
	}))
	reg.Freeze()
	return reg
}

func newTestServer(t *testing.T, doc []byte) *Server {
	t.Helper()
	cfg, err := config.LoadBytes(doc)
	require.NoError(t, err)

	s := New(cfg, logger.NewNop())
	reg := petRoutes(t)

	gen := schema.NewGenerator(schema.NewPlaygroundProvider(), schema.Info{Title: "Pets", Version: "1.0.0"})
	require.NoError(t, s.Mount(reg, gen.Generate(reg.Routes())))
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerDispatchesRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/pets/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got pet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, pet{ID: 7, Name: "rex"}, got)
}

func TestServerCoercionFailure(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/pets/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"params"`)
}

func TestServerCreateAndDelete(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/pets", `{"name":"bolt"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"bolt"`)

	rec = do(s, http.MethodDelete, "/pets/7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServerHandlerError(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/pets/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerServesOpenAPIDocument(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.1", doc["openapi"])
}

func TestServerServesDocsUI(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "elements-api")
	assert.Contains(t, rec.Body.String(), `apiDescriptionUrl="/openapi.json"`)
}

func TestServerDocsDisabled(t *testing.T) {
	s := newTestServer(t, []byte("docs:\n  enabled: false\n"))

	rec := do(s, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code, "the document itself stays reachable")
}

func TestServerBasePath(t *testing.T) {
	s := newTestServer(t, []byte("server:\n  basepath: /api\n"))

	rec := do(s, http.MethodGet, "/api/pets/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/api/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMountRequiresFrozenRegistry(t *testing.T) {
	cfg, err := config.LoadBytes(nil)
	require.NoError(t, err)
	s := New(cfg, logger.NewNop())

	reg := registry.New(logger.NewNop())
	err = s.Mount(reg, nil)
	require.ErrorContains(t, err, "must be frozen")
}

func TestNormalizeBasePath(t *testing.T) {
	assert.Equal(t, "", normalizeBasePath(""))
	assert.Equal(t, "/api", normalizeBasePath("api"))
	assert.Equal(t, "/api", normalizeBasePath("/api/"))
	assert.Equal(t, "/", normalizeBasePath("/"))
}
