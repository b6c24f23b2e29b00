// Package logging configures slog for the analogues API: console output plus
// a weekly-rotating JSON file, with package-level helpers usable before and
// after initialization.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// LoggingService wraps the configured slog logger.
type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. An empty logDir logs to
// console only.
func InitLogger(logDir string) {
	InitLoggerWithOptions(logDir, 4, 100*1024*1024)
}

// InitLoggerWithOptions initializes the global logger with explicit retention
// and file size limits.
func InitLoggerWithOptions(logDir string, retentionWeeks int, maxFileSize int64) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir, retentionWeeks, maxFileSize),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// logWith routes to the configured logger, falling back to a plain console
// logger when nothing is initialized (tests, early startup).
func logWith(level slog.Level, msg string, args ...any) {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		DefaultLoggingService.Logger.Log(context.Background(), level, msg, args...)
		return
	}

	fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	fallback.Log(context.Background(), level, msg, args...)
}

// Package-level functions for direct access

func Debug(msg string, args ...any) { logWith(slog.LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { logWith(slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { logWith(slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { logWith(slog.LevelError, msg, args...) }
