package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/lumberjack/v2"
)

const (
	logMaxSizeMB    = 10
	logMaxBackups   = 3
	logMaxAgeDays   = 28
	defaultLogLevel = slog.LevelInfo
)

// ParseLevel maps a --log-level value onto slog. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultLogLevel, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return defaultLogLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// newLogger returns a JSON logger writing to a rotating file at path. The
// terminal belongs to the console, so an empty path discards everything.
func newLogger(path string, level slog.Level) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: level}
	if strings.TrimSpace(path) == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, opts)), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(w, opts)), w.Close, nil
}
