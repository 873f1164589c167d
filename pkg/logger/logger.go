// Package logger provides the application-wide slog logger.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
)

// Module provides the logger via fx
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// Scope returns a slog attribute that tags log records with a component scope,
// e.g. logger.Scope("search.svc").
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns a slog attribute for an error value
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// NewLogger creates a slog.Logger configured from LOG_LEVEL and GO_ENV.
// Production (GO_ENV=production) uses a JSON handler; everything else uses
// a human-readable text handler.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
