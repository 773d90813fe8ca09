package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSource = `package petapi

import (
	"context"

	"github.com/celsowm/adorn-api-sub006/metadata"
)

type Pet struct {
	ID   int64
	Name string
}

type PetController struct{}

func (pc *PetController) GetPet(ctx context.Context, id int64) (Pet, error) {
	return Pet{}, nil
}

func (pc *PetController) CreatePet(ctx context.Context, body Pet) (Pet, error) {
	return body, nil
}

func Register(c *metadata.Collector) {
	pc := &PetController{}
	c.DeclareController("PetController", "/pets", "pets")
	metadata.GET(c, "PetController", "/{id}", pc.GetPet)
	metadata.POST(c, "PetController", "/", pc.CreatePet)
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "controllers.go"), []byte(fixtureSource), 0o600))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCommandRequiresProjectRoot(t *testing.T) {
	err := execute(t)
	require.Error(t, err)
}

func TestCommandRejectsMissingRoot(t *testing.T) {
	err := execute(t, filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project root")
}

func TestCommandRejectsUnknownFormat(t *testing.T) {
	dir := writeProject(t)
	err := execute(t, dir, "--openapi", "--format", "toml", "--no-cache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestCommandWritesManifest(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "manifest.json")
	cacheDir := filepath.Join(t.TempDir(), "cache")

	require.NoError(t, execute(t, dir, "-o", out, "--cache-dir", cacheDir))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"PetController.GetPet"`)
	assert.Contains(t, string(data), `"/pets/{id}"`)
}

func TestCommandWarmBuildIsByteIdentical(t *testing.T) {
	dir := writeProject(t)
	tmp := t.TempDir()
	cold := filepath.Join(tmp, "cold.json")
	warm := filepath.Join(tmp, "warm.json")
	cacheDir := filepath.Join(tmp, "cache")

	require.NoError(t, execute(t, dir, "-o", cold, "--cache-dir", cacheDir))
	require.NoError(t, execute(t, dir, "-o", warm, "--cache-dir", cacheDir))

	first, err := os.ReadFile(cold)
	require.NoError(t, err)
	second, err := os.ReadFile(warm)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCommandEmitsOpenAPI(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "openapi.yaml")

	require.NoError(t, execute(t, dir, "--openapi", "-f", "yaml", "--no-cache",
		"--title", "Petstore", "-o", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "openapi:")
	assert.Contains(t, text, "Petstore")
	assert.Contains(t, text, "/pets/{id}")
}
