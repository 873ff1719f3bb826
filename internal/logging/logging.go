// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// FileKey is the context key for the file currently being processed.
	FileKey ContextKey = "file"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// SetLogger replaces the global logger. Tests use this to capture output.
func SetLogger(logger *slog.Logger) {
	defaultLogger = logger
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithFile adds the processed file path to the context.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, FileKey, path)
}

// GetFile retrieves the processed file path from the context.
func GetFile(ctx context.Context) string {
	if path, ok := ctx.Value(FileKey).(string); ok {
		return path
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if path := GetFile(ctx); path != "" {
		logger = logger.With("file", path)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// Conversion channels. The driver logs every outcome to one of four
// logical channels; each record leads with the absolute path of the file
// concerned.

// Commit logs a successful certification to the commit channel.
func Commit(path, msg string, args ...any) {
	allArgs := []any{"channel", "commit", "path", path}
	allArgs = append(allArgs, args...)
	defaultLogger.Info(path+" - "+msg, allArgs...)
}

// Rollback logs a per-file cancellation to the rollback channel.
func Rollback(path, msg string, args ...any) {
	allArgs := []any{"channel", "rollback", "path", path}
	allArgs = append(allArgs, args...)
	defaultLogger.Warn(path+" - "+msg, allArgs...)
}

// Save logs a file-system side effect to the save channel.
func Save(path, msg string, args ...any) {
	allArgs := []any{"channel", "save", "path", path}
	allArgs = append(allArgs, args...)
	defaultLogger.Info(path+" - "+msg, allArgs...)
}

// Ugh logs an adapter-level error to the adapter channel.
func Ugh(path string, err error, msg string, args ...any) {
	allArgs := []any{"channel", "ugh", "path", path}
	if err != nil {
		allArgs = append(allArgs, "error", err.Error())
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Error(path+" - "+msg, allArgs...)
}
