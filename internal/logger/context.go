package logger

import (
	"context"
	"log/slog"
	"sync"
)

type contextKey int

const (
	requestLoggerKey contextKey = iota
	logAttrsKey
)

// logAttrs collects attributes added while a request is handled.
// They are written once, in the final request log entry.
type logAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger returns a copy of ctx carrying logger.
func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, logger)
}

// ContextRequestLogger returns the request scoped logger, or the default logger
// when ctx was not created by RequestLogging.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// ContextWithLogAttrs adds attributes to the final log entry for the request.
// It is a no-op outside RequestLogging.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	holder, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return
	}
	holder.mu.Lock()
	holder.attrs = append(holder.attrs, attrs...)
	holder.mu.Unlock()
}

func contextLogAttrs(ctx context.Context) []slog.Attr {
	holder, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return nil
	}
	holder.mu.Lock()
	defer holder.mu.Unlock()
	return append([]slog.Attr(nil), holder.attrs...)
}
