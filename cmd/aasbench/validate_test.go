package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandAcceptsCanonicalReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"schema_version": 2,
		"sdk_id": "sdk-a",
		"datasets": {
			"wide": {
				"operations": {
					"deserialize": {
						"operation_id": "deserialize",
						"operation_track": "core",
						"sample_count": 10,
						"measurement_semantics": "mean_ns_per_operation",
						"failure_state": "ok",
						"iterations": 100,
						"mean_ns": 1000,
						"median_ns": 990,
						"stddev_ns": 50,
						"min_ns": 900,
						"max_ns": 1100
					}
				}
			}
		}
	}`), 0644))

	out, codes, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Contains(t, out, "Report valid")
}

func TestValidateCommandRejectsNonCanonicalKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"schema_version": 2,
		"sdk_id": "sdk-a",
		"datasets": {
			"wide": {"operations": {"deserializeXml": {"iterations": 10, "mean_ns": 5}}}
		}
	}`), 0644))

	out, codes, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, codes)
	assert.Contains(t, out, "Invalid report")
}

func TestValidateCommandRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

	out, codes, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, codes)
	assert.Contains(t, out, "not valid JSON")
}

func TestValidateCommandMissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
