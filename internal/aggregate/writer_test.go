package aggregate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	res := &Result{
		GeneratedAt:      time.Now().UTC(),
		Provenance:       Provenance{RunID: "run-1"},
		SDKBenchmarks:    []SDKEntry{},
		ServerBenchmarks: []ServerEntry{},
	}

	require.NoError(t, WriteArtifact(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "run-1", back.Provenance.RunID)
}

func TestWriteArtifactOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("old garbage"), 0644))

	res := &Result{Provenance: Provenance{RunID: "run-2"}}
	require.NoError(t, WriteArtifact(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "run-2")
}

func TestWriteArtifactLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteArtifact(filepath.Join(dir, "results.json"), &Result{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.json", entries[0].Name())
}
