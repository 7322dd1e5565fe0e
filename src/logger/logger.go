// src/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var L = slog.Default() // Global logger instance, replaced by InitLogger

type contextKey string

const loggerKey contextKey = "logger"

// ParseLevel maps a LOG_LEVEL string to a slog level. Unknown values map to info.
func ParseLevel(logLevelStr string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(logLevelStr)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// InitLogger initializes the global logger writing JSON to stdout.
// Call this once at application startup, after loading config.
func InitLogger(logLevelStr string) {
	InitLoggerWithWriter(logLevelStr, os.Stdout)
}

// InitLoggerWithWriter is InitLogger with an explicit destination.
func InitLoggerWithWriter(logLevelStr string, w io.Writer) {
	level, ok := ParseLevel(logLevelStr)
	if !ok {
		slog.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", logLevelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	L.Info("Logger initialized", "level", level.String())
}

// FromContext retrieves a logger from context, or returns the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// ToContext embeds a slog.Logger into a context.Context.
func ToContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithComponent returns a child of the global logger tagged with a component name.
func WithComponent(name string) *slog.Logger {
	return L.With(slog.String("component", name))
}
