package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
)

// NewLogger returns a slog logger configured for Cloud Logging compatibility.
func NewLogger(service string) *slog.Logger {
	return NewLoggerTo(os.Stdout, service)
}

// NewLoggerTo writes JSON records to w. The CLI uses it to keep stdout free for command output.
func NewLoggerTo(w io.Writer, service string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true})
	return slog.New(handler).With(slog.String("service", service))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithRequestID attaches the chi request identifier, when present, to the logger.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return logger.With(slog.String("requestId", reqID))
	}
	return logger
}
