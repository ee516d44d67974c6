// Package observability holds the logging, request-ID, and span plumbing the
// middleware chain and handlers share.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"bizpulse/internal/config"
)

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewLogger builds the process-wide slog.Logger. Unknown levels and formats
// fall back to info/json rather than failing startup.
func NewLogger(cfg config.LoggerConfig) *slog.Logger {
	level, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

type contextKey string

const RequestIDKey contextKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID returns the request ID carried in ctx, or "" outside a
// request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
