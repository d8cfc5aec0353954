package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger appends timestamped lines to a run log file. Logging must never
// break the scraping flow, so every failure is swallowed; a nil Logger
// or empty path is a no-op.
type Logger struct {
	path string
}

func New(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Event(format string, args ...any) {
	l.write("INFO", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.write("ERROR", fmt.Sprintf(format, args...))
}

func (l *Logger) write(level, message string) {
	if l == nil || l.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().UTC().Format(time.RFC3339)
	_, _ = fmt.Fprintf(f, "%s [%s] %s\n", timestamp, level, message)
}
