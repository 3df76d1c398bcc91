package templates

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingConfig(t *testing.T) {
	t.Run("level names map to slog levels", func(t *testing.T) {
		assert.Equal(t, slog.LevelDebug, (&LoggingConfig{Level: "debug"}).SlogLevel())
		assert.Equal(t, slog.LevelWarn, (&LoggingConfig{Level: "warn"}).SlogLevel())
		assert.Equal(t, slog.LevelError, (&LoggingConfig{Level: "error"}).SlogLevel())
		// Unset falls back to info.
		assert.Equal(t, slog.LevelInfo, (&LoggingConfig{}).SlogLevel())
	})

	t.Run("log file gains a date suffix", func(t *testing.T) {
		cfg := &LoggingConfig{FileName: "app.log", Directory: "/var/log/wrangler"}
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, filepath.Join("/var/log/wrangler", "app_2024-06-01.log"), cfg.LogFilePath(now))

		assert.Equal(t, "", (&LoggingConfig{}).LogFilePath(now))
	})

	t.Run("new logger writes to the dated file", func(t *testing.T) {
		tempDir := t.TempDir()
		cfg := &LoggingConfig{
			Level:     "debug",
			Format:    "json",
			FileName:  "app.log",
			Directory: tempDir,
		}

		logger, err := cfg.NewLogger()
		require.NoError(t, err)
		logger.Debug("hello from test")

		matches, err := filepath.Glob(filepath.Join(tempDir, "app_*.log"))
		require.NoError(t, err)
		require.Len(t, matches, 1)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from test")
	})
}
