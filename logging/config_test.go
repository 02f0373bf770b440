package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC), "2026-W02"},
		{time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), "2026-W36"},
		// Jan 1-3 2027 belong to the last ISO week of 2026.
		{time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W53"},
	}

	for _, tt := range tests {
		if got := weekKey(tt.date); got != tt.expected {
			t.Errorf("weekKey(%s) = %q, expected %q", tt.date.Format("2006-01-02"), got, tt.expected)
		}
	}
}

func TestWeeklyLoggerWritesCurrentWeekFile(t *testing.T) {
	dir := t.TempDir()
	wl := NewWeeklyLogger(dir, 4)
	defer wl.Close()

	if _, err := wl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	expected := filepath.Join(dir, fmt.Sprintf("app-%s.log", weekKey(time.Now())))
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected log file at %s: %v", expected, err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("Expected written content in file, got %q", data)
	}
}

func TestWeeklyLoggerPrunesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "app-2020-W01.log")
	if err := os.WriteFile(stale, []byte("old"), 0666); err != nil {
		t.Fatalf("Failed to create stale file: %v", err)
	}
	old := time.Now().Add(-5 * 7 * 24 * time.Hour)
	os.Chtimes(stale, old, old)

	keeper := filepath.Join(dir, "notes.txt")
	os.WriteFile(keeper, []byte("keep"), 0666)
	os.Chtimes(keeper, old, old)

	wl := NewWeeklyLogger(dir, 4)
	defer wl.Close()
	wl.Write([]byte("trigger rotation\n"))

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Expected expired log file pruned")
	}
	if _, err := os.Stat(keeper); err != nil {
		t.Error("Expected non-log file untouched")
	}
}

func TestSetupLoggerCreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger := SetupLogger(dir, 0)
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	logger.Info("startup probe")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Expected log directory created: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "app-") && strings.HasSuffix(e.Name(), ".log") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected weekly log file in %s, found %v", dir, entries)
	}
}
