package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileLoggerWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")
	l := NewFileLogger(path, zap.DebugLevel)

	l.Info("REFINE", "Preference updated", map[string]interface{}{"change": "budget: 2000 → 1500"})
	l.Debug("CATALOG", "Dataset loaded", nil)
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "REFINE", lines[0]["module"])
	assert.Equal(t, "Preference updated", lines[0]["message"])
	assert.Equal(t, "budget: 2000 → 1500", lines[0]["details"].(map[string]interface{})["change"])
	assert.Equal(t, "DEBUG", lines[1]["level"])
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error("ORCHESTRATOR", "ignored", map[string]interface{}{"error": "boom"})
	assert.NoError(t, l.Sync())
	assert.Empty(t, l.FilePath())
}
