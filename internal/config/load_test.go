package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load("")
	s := Current()

	assert.Equal(t, int64(5), s.MinSampleCount)
	assert.Equal(t, 10.0, s.RegressionThresholdPct)
	assert.Equal(t, ".aasbench/baseline.db", s.BaselinePath)
	assert.Equal(t, "known-sdks.json", s.KnownSDKsPath)
	assert.Empty(t, s.BaselinePostgresDSN)
	assert.Empty(t, s.SlackWebhookURL)
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := filepath.Join(t.TempDir(), "aasbench.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"min_sample_count: 8\n"+
			"regression_threshold_pct: 7.5\n"+
			"baseline:\n  path: /tmp/b.db\n"), 0644))

	Load(cfg)
	s := Current()

	assert.Equal(t, int64(8), s.MinSampleCount)
	assert.Equal(t, 7.5, s.RegressionThresholdPct)
	assert.Equal(t, "/tmp/b.db", s.BaselinePath)
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("AASBENCH_MIN_SAMPLE_COUNT", "12")

	Load("")
	assert.Equal(t, int64(12), Current().MinSampleCount)
}
