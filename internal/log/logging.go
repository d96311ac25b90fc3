// Package log configures the process slog.Logger.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, everything goes to stderr and to the file.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace sits below Debug and enables per-event and per-datagram output.
const LevelTrace slog.Level = -8

func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r.Clone())
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes records to h only when pass accepts their level.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// NewHandlers builds the console handlers for level, writing non-errors to
// out and errors to errOut.
func NewHandlers(level slog.Level, out, errOut io.Writer) []slog.Handler {
	stdoutHandler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel})
	stderrHandler := slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError, ReplaceAttr: replaceLevel})
	return []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: stdoutHandler},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: stderrHandler},
	}
}

// SetupLogger builds a slog.Logger with console and optional file handlers.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	var handlers []slog.Handler

	if logFile == "" {
		handlers = NewHandlers(level, os.Stdout, os.Stderr)
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel}))
	}
	var closeFiles []io.Closer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closeFiles = append(closeFiles, f)
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel}))
	}
	logger := slog.New(MultiHandler{hs: handlers})
	return logger, closeFiles, nil
}
