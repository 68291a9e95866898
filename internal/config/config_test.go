package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Planner.CheckpointBackend)
	assert.Equal(t, "embedded", cfg.Catalog.Source)
	assert.Equal(t, 6, cfg.Planner.HistoryWindow)
	assert.Equal(t, 60*time.Second, cfg.Ai.OracleTimeout)
	assert.False(t, cfg.App.NatsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PLANNER_MAX_TURNS", "7")
	t.Setenv("ORACLE_TIMEOUT", "15s")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("LLM_PROVIDER", "gemini")

	cfg := Load()

	assert.Equal(t, 7, cfg.Planner.MaxTurns)
	assert.Equal(t, 15*time.Second, cfg.Ai.OracleTimeout)
	assert.True(t, cfg.App.NatsEnabled)
	assert.Equal(t, "gemini", cfg.Ai.LLMProvider)
}

func TestLoadFromConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(file, []byte("planner_output_dir: itineraries\ncatalog_source: file\n"), 0o644))
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("CATALOG_SOURCE", "http")

	cfg := Load()

	assert.Equal(t, "itineraries", cfg.Planner.OutputDir)
	assert.Equal(t, "http", cfg.Catalog.Source, "environment wins over the file")
}
