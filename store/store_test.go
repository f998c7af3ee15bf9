package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/promptcal/store"
	"github.com/effective-security/promptcal/strategy"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Mapping_Lookup(t *testing.T) {
	m := store.NewMapping()
	m.Merge(map[string]store.ToolEntry{
		"list_directory": {Server: "filesystem", Tool: "list_directory", Strategy: strategy.Imperative},
	})

	name, ok := m.Lookup("list_directory")
	assert.True(t, ok)
	assert.Equal(t, strategy.Imperative, name)

	_, ok = m.Lookup("unknown")
	assert.False(t, ok)
	assert.Equal(t, strategy.Imperative, m.DefaultStrategy())
	assert.NotEmpty(t, m.LastUpdated)
}

func Test_Mapping_RoundTrip(t *testing.T) {
	m := store.NewMapping()
	m.Merge(map[string]store.ToolEntry{
		"list_directory": {Server: "filesystem", Tool: "list_directory", Strategy: strategy.Imperative, SchemaHash: "abc123"},
		"tavily-extract": {Server: "web", Tool: "tavily-extract", Strategy: strategy.NaturalExplicit},
	})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back store.Mapping
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(m.Tools, back.Tools); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, m.Default, back.Default)
}

func Test_FileStore_LoadMissing(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "mapping.json"))
	m, err := st.LoadMapping(ctx)
	require.NoError(t, err)
	assert.Empty(t, m.Tools)
	assert.Equal(t, strategy.Default, m.Default)
}

func Test_FileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "mapping.json")
	st := store.NewFileStore(file)

	m := store.NewMapping()
	m.Merge(map[string]store.ToolEntry{
		"read_file": {Server: "filesystem", Tool: "read_file", Strategy: strategy.StepByStep},
	})
	require.NoError(t, st.SaveMapping(ctx, m))

	back, err := st.LoadMapping(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(m.Tools, back.Tools); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}
}

// calibrating server A must not remove entries written for server B,
// even when A's pass loaded the mapping before B's entries existed
func Test_FileStore_MergePreservesOtherServers(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "mapping.json")
	st := store.NewFileStore(file)

	stale, err := st.LoadMapping(ctx)
	require.NoError(t, err)

	other := store.NewMapping()
	other.Merge(map[string]store.ToolEntry{
		"tavily-extract": {Server: "web", Tool: "tavily-extract", Strategy: strategy.NaturalExplicit},
	})
	require.NoError(t, st.SaveMapping(ctx, other))

	stale.Merge(map[string]store.ToolEntry{
		"list_directory": {Server: "filesystem", Tool: "list_directory", Strategy: strategy.Imperative},
	})
	require.NoError(t, st.SaveMapping(ctx, stale))

	final, err := st.LoadMapping(ctx)
	require.NoError(t, err)
	assert.Len(t, final.Tools, 2)
	assert.Equal(t, "web", final.Tools["tavily-extract"].Server)
	assert.Equal(t, "filesystem", final.Tools["list_directory"].Server)
}

func Test_FileStore_PreservesUnknownFields(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "mapping.json")
	seed := `{"tools":{},"default":"imperative","annotations":{"owner":"infra"}}`
	require.NoError(t, os.WriteFile(file, []byte(seed), 0o644))

	st := store.NewFileStore(file)
	m, err := st.LoadMapping(ctx)
	require.NoError(t, err)
	m.Merge(map[string]store.ToolEntry{
		"search": {Server: "web", Tool: "search", Strategy: strategy.Imperative},
	})
	require.NoError(t, st.SaveMapping(ctx, m))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"owner":"infra"`)
}

func Test_FileStore_ToolNamesWithPathSyntax(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "mapping.json")
	st := store.NewFileStore(file)

	m := store.NewMapping()
	m.Merge(map[string]store.ToolEntry{
		"repo.search": {Server: "git", Tool: "repo.search", Strategy: strategy.Imperative},
		"glob*match":  {Server: "fs", Tool: "glob*match", Strategy: strategy.StepByStep},
	})
	require.NoError(t, st.SaveMapping(ctx, m))

	back, err := st.LoadMapping(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(m.Tools, back.Tools); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}
}

func Test_FormatSchemaHash(t *testing.T) {
	assert.Equal(t, "ff", store.FormatSchemaHash(255))
}
