// Package logger configures the application slog logger and provides the per-request
// logger used by the HTTP handlers.
//
// Development and test environments log human readable, coloured output (tint);
// prod and staging log JSON.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging when passed to InitLogger
const LevelNone = slog.Level(12)

// ParseLogLevel converts a LOG_LEVEL value to a slog.Level.
// Unknown values default to info; "none" silences the logger.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "off":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates the application logger and installs it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, level, environment))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, level slog.Level, environment string) slog.Handler {
	if level >= LevelNone {
		return slog.NewTextHandler(io.Discard, nil)
	}

	switch environment {
	case "prod", "staging":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	default:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
}
