package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every log record as "service".
const ServiceName = "projectgateway"

// NewLogger returns the process logger, configured from GO_ENV and LOG_LEVEL, writing to stdout.
func NewLogger() *slog.Logger {
	return newLogger(os.Stdout, os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"))
}

// newLogger emits JSON in production and text elsewhere. Unknown levels mean info.
func newLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	if env == "" {
		env = "development"
	}
	return slog.New(handler).With("service", ServiceName, "env", env)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
