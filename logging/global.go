// Package logging provides the structured slog logger used across the API:
// console text output, a rotating JSON log file and an HTTP request logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LoggingService owns the process logger and its file writer.
type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

// Options configures InitLogger.
type Options struct {
	Dir            string // empty disables the file output
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
}

var DefaultLoggingService *LoggingService

var (
	fallbackOnce sync.Once
	fallback     *slog.Logger
)

// InitLogger initializes the global logger instance and makes it the slog default
func InitLogger(opts Options) {
	logger, writer := SetupLogger(opts)
	DefaultLoggingService = &LoggingService{Logger: logger, writer: writer}
	slog.SetDefault(logger)
}

// Close flushes and closes the log file, if any.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.writer == nil {
		return nil
	}
	return DefaultLoggingService.writer.Close()
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// current returns the configured logger, or a console logger when InitLogger was never called.
func current() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	fallbackOnce.Do(func() {
		fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	})
	return fallback
}

// DefaultLogger returns the process logger, falling back to console output
func DefaultLogger() *slog.Logger {
	return current()
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
