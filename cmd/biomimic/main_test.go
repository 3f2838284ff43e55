package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hschendel/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/biomimic/pkg/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateListShowDelete(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "designs.json")
	meshPath := filepath.Join(dir, "out.stl")

	out, err := run(t, "--store", storePath, "generate", "--seed", "42", "--algorithm", "spiral", "--out", meshPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "NOVEL DESIGN: SPIRAL #000042")

	f, err := os.Open(meshPath)
	require.NoError(t, err)
	solid, err := stl.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.NotEmpty(t, solid.Triangles)

	s, err := store.NewFileStore(storePath)
	require.NoError(t, err)
	saved, err := s.List()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	id := saved[0].ID.String()

	out, err = run(t, "--store", storePath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id[:8])
	assert.Contains(t, out, "SPIRAL #000042")

	out, err = run(t, "--store", storePath, "show", id[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "Seed: 000042")

	exported := filepath.Join(dir, "again.stl")
	out, err = run(t, "--store", storePath, "export", id, "--out", exported, "--format", "ascii")
	require.NoError(t, err)
	assert.Equal(t, exported, strings.TrimSpace(out))
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("solid")))

	_, err = run(t, "--store", storePath, "delete", id)
	require.NoError(t, err)
	out, err = run(t, "--store", storePath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved designs")
}

func TestExportUsesStoredSurface(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "designs.json")
	cfgPath := filepath.Join(dir, "mc.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[generation]\nsurface = \"marching-cubes\"\nmarchingCells = 40\n"), 0o644))

	_, err := run(t, "--config", cfgPath, "--store", storePath, "generate", "--seed", "4", "-a", "gyroid")
	require.NoError(t, err)

	s, err := store.NewFileStore(storePath)
	require.NoError(t, err)
	saved, err := s.List()
	require.NoError(t, err)
	require.Len(t, saved, 1)

	meshPath := filepath.Join(dir, "gyroid.stl")
	_, err = run(t, "--store", storePath, "export", saved[0].ID.String(), "--out", meshPath)
	require.NoError(t, err)

	f, err := os.Open(meshPath)
	require.NoError(t, err)
	defer f.Close()
	solid, err := stl.ReadAll(f)
	require.NoError(t, err)
	assert.Len(t, solid.Triangles, saved[0].Properties.TriangleCount)
}

func TestGenerateNoSaveJSON(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "designs.json")
	out, err := run(t, "--store", storePath, "generate", "--seed", "3", "-a", "honeycomb", "--no-save", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"algorithm": "honeycomb"`)
	assert.NoFileExists(t, storePath)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "designs.json")
	_, err := run(t, "--store", storePath, "generate", "--density", "3")
	assert.Error(t, err)
	_, err = run(t, "--store", storePath, "generate", "--algorithm", "coral")
	assert.Error(t, err)
}

func TestDeleteArguments(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "designs.json")
	_, err := run(t, "--store", storePath, "delete")
	assert.Error(t, err)
	_, err = run(t, "--store", storePath, "delete", "--all", "abc")
	assert.Error(t, err)
	_, err = run(t, "--store", storePath, "delete", "--all")
	assert.NoError(t, err)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "designs.json")
	recipe := filepath.Join(dir, "set.bm")
	require.NoError(t, os.WriteFile(recipe, []byte(`
(def soft (preset :density 0.3))
(design :seed 1 :algorithm :honeycomb :name "comb")
(sweep :from 10 :count 2 :algorithm :branching :preset soft :name "tree")
`), 0o644))

	exportDir := filepath.Join(dir, "meshes")
	out, err := run(t, "--store", storePath, "batch", recipe, "--export-dir", exportDir, "-j", "2")
	require.NoError(t, err, out)
	for _, name := range []string{"comb.stl", "tree-0.stl", "tree-1.stl"} {
		assert.FileExists(t, filepath.Join(exportDir, name))
	}

	s, err := store.NewFileStore(storePath)
	require.NoError(t, err)
	saved, err := s.List()
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestBatchRecipeErrors(t *testing.T) {
	dir := t.TempDir()
	recipe := filepath.Join(dir, "bad.bm")
	require.NoError(t, os.WriteFile(recipe, []byte(`(design :seed 1`), 0o644))
	_, err := run(t, "--store", filepath.Join(dir, "d.json"), "batch", recipe)
	assert.Error(t, err)
}

func TestPatterns(t *testing.T) {
	out, err := run(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "(gyroid)")

	out, err = run(t, "patterns", "zzzz-no-match")
	require.NoError(t, err)
	assert.Contains(t, out, "no pattern matches")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "biomimic.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: warn\nstore:\n  path: "+filepath.Join(dir, "s.json")+"\n"), 0o644))
	_, err := run(t, "--config", cfgPath, "generate", "--seed", "8", "-a", "gyroid")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "s.json"))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bogus: 1\n"), 0o644))
	_, err = run(t, "--config", bad, "list")
	assert.Error(t, err)
}

func TestGenerateSliderRanges(t *testing.T) {
	fl := newGenerateCmd(&app{}).Flags()
	assert.Contains(t, fl.Lookup("density").Usage, "[0.2, 1]")
	assert.Contains(t, fl.Lookup("complexity").Usage, "[0.1, 1]")
	assert.Contains(t, fl.Lookup("organic-bias").Usage, "[0, 1]")
}
