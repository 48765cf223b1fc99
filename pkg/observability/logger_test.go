package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sdkbench/pkg/config"
)

func setupTestLogger(cfg config.LoggerConfig) *bytes.Buffer {
	buf := new(bytes.Buffer)
	Initialize(cfg, zapcore.AddSync(buf))
	return buf
}

func TestInitialize(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		ResetForTest()
		buf := setupTestLogger(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "sdkbench"})

		GetLogger().Debug("Detecting runner", zap.String("dir", "/tmp/x"))
		Sync()

		assert.Contains(t, buf.String(), "Detecting runner")
		assert.Contains(t, buf.String(), "sdkbench")
	})

	t.Run("json", func(t *testing.T) {
		ResetForTest()
		buf := setupTestLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "sdkbench"})

		GetLogger().Warn("Install failed", zap.String("run_id", "abc"))
		Sync()

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "abc", entry["run_id"])
		assert.Equal(t, "sdkbench", entry["logger"])
	})

	t.Run("level filters", func(t *testing.T) {
		ResetForTest()
		buf := setupTestLogger(config.LoggerConfig{Level: "warn", Format: "json"})

		GetLogger().Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		buf := setupTestLogger(config.LoggerConfig{Level: "chatty", Format: "json"})

		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("rotating file sink", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "sdkbench.log")
		setupTestLogger(config.LoggerConfig{Level: "info", Format: "console", LogFile: logFile, MaxSize: 1})

		GetLogger().Info("to file")
		Sync()

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	ResetForTest()
}

func TestGetLogger_BeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
}
