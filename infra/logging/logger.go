// Package logging provides the structured JSON logger used by scrollfeed.
// The TUI owns the terminal, so records go to a file or nowhere.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger wraps a slog.Logger and the file it writes to.
type Logger struct {
	*slog.Logger
	file      *os.File
	SessionID string
}

// New creates a Logger that appends JSON records to path. An empty path
// yields a logger that discards everything. Every record carries a
// session_id attribute.
func New(path, level string) (*Logger, error) {
	sessionID := uuid.NewString()

	if strings.TrimSpace(path) == "" {
		return &Logger{
			Logger:    slog.New(slog.DiscardHandler),
			SessionID: sessionID,
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{
		Logger:    slog.New(handler).With(slog.String("session_id", sessionID)),
		file:      file,
		SessionID: sessionID,
	}, nil
}

// ParseLevel maps a level name to a slog level. Unknown names map to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
