package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "Uncategorized", cfg.UncategorizedLabel)
	assert.Equal(t, 4, cfg.Score.TargetSessions)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "0.0.0.0:9000"
	cfg.FixedGrid = true
	cfg.Score.TargetSessions = 6
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", loaded.Listen)
	assert.True(t, loaded.FixedGrid)
	assert.Equal(t, 6, loaded.Score.TargetSessions)
	require.NotNil(t, loaded.BasicAuth)
	assert.Equal(t, "u", loaded.BasicAuth.Username)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.NotEmpty(t, cfg.Timezone)
	assert.Equal(t, "Uncategorized", cfg.UncategorizedLabel)
	assert.NotEmpty(t, cfg.RollupCron)
	assert.InDelta(t, 0.5, cfg.Score.Task, 1e-9)
	assert.Equal(t, 4, cfg.Score.TargetSessions)
}

func TestNormalizeKeepsExplicitWeights(t *testing.T) {
	cfg := &Config{}
	cfg.Score.Task = 0.4
	cfg.Score.Pomodoro = 0.3
	cfg.Score.Sleep = 0.3
	cfg.Score.TargetSessions = 8
	cfg.Normalize()

	assert.InDelta(t, 0.4, cfg.Score.Task, 1e-9)
	assert.Equal(t, 8, cfg.Score.TargetSessions)
}

func TestNormalizePartiallyZeroWeights(t *testing.T) {
	// Zeroing individual signals is a valid configuration and survives
	// normalization; only an all-zero block reads as absent.
	cfg := &Config{}
	cfg.Score.Sleep = 1.0
	cfg.Normalize()

	assert.Zero(t, cfg.Score.Task)
	assert.Zero(t, cfg.Score.Pomodoro)
	assert.InDelta(t, 1.0, cfg.Score.Sleep, 1e-9)
	assert.Equal(t, 4, cfg.Score.TargetSessions)
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [not, closed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
