package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// WeeklyLogger writes to one log file per ISO week and prunes files older
// than the retention window on rotation.
type WeeklyLogger struct {
	logDir      string
	retention   time.Duration
	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
}

// NewWeeklyLogger creates a weekly-rotating file writer.
func NewWeeklyLogger(logDir string, retentionWeeks int) *WeeklyLogger {
	return &WeeklyLogger{
		logDir:    logDir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
	}
}

// weekKey returns the ISO week key in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends to the current week's file, rotating when the week changes.
func (wl *WeeklyLogger) Write(p []byte) (int, error) {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	week := weekKey(time.Now())
	if wl.currentFile == nil || wl.currentWeek != week {
		if err := wl.rotate(week); err != nil {
			return 0, err
		}
	}
	return wl.currentFile.Write(p)
}

// rotate opens the file for week and prunes expired files. Caller holds the
// lock.
func (wl *WeeklyLogger) rotate(week string) error {
	if wl.currentFile != nil {
		if err := wl.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		wl.currentFile = nil
	}

	logPath := filepath.Join(wl.logDir, fmt.Sprintf("app-%s.log", week))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	wl.currentFile = file
	wl.currentWeek = week

	wl.pruneOldLogs()
	return nil
}

// pruneOldLogs removes log files past the retention window.
func (wl *WeeklyLogger) pruneOldLogs() {
	entries, err := os.ReadDir(wl.logDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-wl.retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(wl.logDir, entry.Name()))
		}
	}
}

// Close closes the current log file.
func (wl *WeeklyLogger) Close() error {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	if wl.currentFile != nil {
		err := wl.currentFile.Close()
		wl.currentFile = nil
		return err
	}
	return nil
}

// SetupLogger configures slog to write text to the console and JSON to a
// weekly-rotating file under logDir. Falls back to console-only when the
// directory cannot be used.
func SetupLogger(logDir string, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory", "error", err)
		return logger
	}

	weekly := NewWeeklyLogger(logDir, 4)
	fileHandler := slog.NewJSONHandler(weekly, &slog.HandlerOptions{Level: level})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
}

// multiHandler fans one record out to several slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
