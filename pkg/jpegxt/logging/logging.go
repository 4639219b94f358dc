// Package logging provides the structured logging setup shared by the
// codec and its CLI driver. It mirrors the teacher's cmd/ctl wiring of a
// slog default logger, adding a rotating file sink for long-running
// encode/decode sessions.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ctxKey is used to stash extra slog.Attr on a context so cooperative
// codec steps (§5) can be told apart without threading a logger by hand.
type ctxKey struct{}

// Logger builds the process-wide structured logger. When filePath is
// non-empty, log lines are written to a lumberjack-rotated file instead of
// w; json selects slog.JSONHandler over slog.TextHandler.
func Logger(w io.Writer, json bool, level slog.Level, filePath string) *slog.Logger {
	if filePath != "" {
		w = &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

// Default returns a logger writing text lines to stderr at Info level,
// used by packages that have no access to a configured instance logger
// (table construction at package init, for instance).
func Default() *slog.Logger {
	return Logger(os.Stderr, false, slog.LevelInfo, "")
}

// AppendCtx attaches extra attributes to ctx; ctxHandler.Handle reads them
// back out and prepends them to every record logged through that context.
func AppendCtx(ctx context.Context, attr slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return context.WithValue(ctx, ctxKey{}, append(existing, attr))
}

// ctxHandler is a slog.Handler decorator that pulls attributes stashed by
// AppendCtx into every record it handles.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
