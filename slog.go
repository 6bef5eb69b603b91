package proclog

import (
	"log/slog"

	"github.com/willibrandon/proclog/core"
	"github.com/willibrandon/proclog/internal/handler"
)

// NewSlogLogger creates a slog.Logger whose records go through a new
// instance logger for ctx.
func NewSlogLogger(ctx core.Context, options ...Option) *slog.Logger {
	return slog.New(New(ctx, options...).AsSlogHandler())
}

// AsSlogHandler returns a slog.Handler writing through l. Attributes
// become the record payload.
func (l *Logger) AsSlogHandler() slog.Handler {
	return handler.NewSlogHandler(l, false)
}
