// Package logging configures the application logger: structured slog output
// to console and a weekly-rotating JSON file, with package-level helpers.
package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance.
func InitLogger(logDir string, level slog.Level) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir, level),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

func logger(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return DefaultLoggingService.Logger
}

func Info(msg string, args ...any) {
	logger(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger(slog.LevelDebug).Debug(msg, args...)
}
