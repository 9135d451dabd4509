// Package logging provides file-based logging for planr.
// It outputs logs to both a global log file (.planr/logs/planr.log)
// and task-specific log files (.planr/logs/task-N.log), and can mirror
// entries to a console slog.Logger.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/runoshun/planr/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger appends entries to planr.log and per-task files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	files   map[int]*os.File // globalKey or task ID
	console *slog.Logger
	now     func() time.Time
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a new Logger that writes to the data directory's logs.
// If dataDir is empty, file logging is disabled.
func New(dataDir string, level slog.Level) *Logger {
	return &Logger{
		dataDir: dataDir,
		level:   level,
		files:   make(map[int]*os.File),
		now:     time.Now,
	}
}

// SetConsole mirrors every entry to l, regardless of the file level.
// The console logger applies its own level.
func (l *Logger) SetConsole(console *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = console
}

// NewConsole returns a slog.Logger rendering to w through charmbracelet/log.
// Verbose enables debug entries; otherwise only warnings and errors are shown.
func NewConsole(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "planr",
	})
	return slog.New(handler)
}

// ParseLevel maps a config level name to slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// globalKey is the files map key for planr.log; task IDs start at 1.
const globalKey = 0

// file returns the open log file for key, opening it on first use.
func (l *Logger) file(key int) (*os.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.files[key]; ok {
		return f, nil
	}
	if err := os.MkdirAll(domain.LogsDir(l.dataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := domain.GlobalLogPath(l.dataDir)
	if key != globalKey {
		path = domain.TaskLogPath(l.dataDir, key)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // shared with the repository's users
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", filepath.Base(path), err)
	}
	l.files[key] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for key, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(l.files, key)
	}
	return errors.Join(errs...)
}

// formatEntry renders one line:
// [2026-03-04 05:06:07] [INFO] [task-1] [engine] message
func formatEntry(t time.Time, level slog.Level, taskID int, category, msg string) string {
	scope := "global"
	if taskID > 0 {
		scope = fmt.Sprintf("task-%d", taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"), level, scope, category, msg)
}

// log mirrors the entry to the console, then appends it to planr.log and,
// for task entries, to the task's own file.
func (l *Logger) log(level slog.Level, taskID int, category, msg string) {
	l.mirror(level, taskID, category, msg)

	if l.dataDir == "" || level < l.level {
		return
	}

	entry := formatEntry(l.now(), level, taskID, category, msg)
	keys := []int{globalKey}
	if taskID > 0 {
		keys = append(keys, taskID)
	}
	for _, key := range keys {
		if f, err := l.file(key); err == nil {
			_, _ = io.WriteString(f, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(taskID int, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID int, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID int, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID int, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}

func (l *Logger) mirror(level slog.Level, taskID int, category, msg string) {
	l.mu.Lock()
	console := l.console
	l.mu.Unlock()
	if console == nil {
		return
	}

	attrs := []any{slog.String("category", category)}
	if taskID > 0 {
		attrs = append(attrs, slog.String("task", domain.TaskRefName(taskID)))
	}
	console.Log(context.Background(), level, msg, attrs...)
}
