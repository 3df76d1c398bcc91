package templates

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arcann/config-wrangler/pkg/config"
)

// LoggingConfig describes log output: console level and format, plus
// an optional log file whose name gains a date suffix so daily runs do
// not clobber each other.
type LoggingConfig struct {
	config.Hierarchy

	Level     string `config:"level" validate:"omitempty,oneof=debug info warn error"`
	Format    string `config:"format" validate:"omitempty,oneof=text json"`
	FileName  string `config:"file_name"`
	Directory string `config:"directory"`
	AddSource bool   `config:"add_source"`
}

// SlogLevel maps the configured level name onto slog's scale.
func (l *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFilePath renders the dated file path, or "" when file output is
// not configured.
func (l *LoggingConfig) LogFilePath(now time.Time) string {
	if l.FileName == "" {
		return ""
	}
	ext := filepath.Ext(l.FileName)
	base := strings.TrimSuffix(l.FileName, ext)
	name := fmt.Sprintf("%s_%s%s", base, now.Format("2006-01-02"), ext)
	return filepath.Join(l.Directory, name)
}

// NewLogger builds a slog.Logger per this section. With a file name
// configured, output goes to both stderr and the dated file.
func (l *LoggingConfig) NewLogger() (*slog.Logger, error) {
	var out io.Writer = os.Stderr
	if path := l.LogFilePath(time.Now()); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	opts := &slog.HandlerOptions{Level: l.SlogLevel(), AddSource: l.AddSource}
	var handler slog.Handler
	if strings.EqualFold(l.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), nil
}
