package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	base     *slog.Logger
	discard  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// DefaultLogPath is where the TUI logs when no path is configured; the
// terminal itself is owned by the renderer.
func DefaultLogPath() string {
	return filepath.Join(os.TempDir(), "pkbrowse.log")
}

// SetDebug switches between debug and info level output.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init opens path for appending and routes all component loggers to it.
// Until Init is called, loggers discard their output.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	logFile = f
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	base.Info("logger initialized", "path", path)
	return nil
}

func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		return discard
	}
	return base
}

// ComponentLogger returns a logger with the component attribute attached.
func ComponentLogger(component string) *slog.Logger {
	return Get().With(slog.String("component", component))
}

// WithSession returns a logger scoped to one search session.
func WithSession(sessionID string) *slog.Logger {
	return Get().With(slog.String("session", sessionID))
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	base = nil
}
