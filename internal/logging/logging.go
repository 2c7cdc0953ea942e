// Package logging builds the process logger.
//
// Normal runs log warnings and errors as text on stderr. With debug on,
// every record down to debug level is also written as JSON lines to a log
// file in the working directory, which is where the TUI's key presses,
// cache transitions and adjuster changes end up.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "almanac-debug.log"

// Options configures the logger.
type Options struct {
	// Debug enables the JSON debug log file.
	Debug bool
	// DebugPath overrides DebugLogPath.
	DebugPath string
	// Stderr receives the text log. Nil means os.Stderr.
	Stderr io.Writer
	// Quiet drops the stderr log, for full-screen programs.
	Quiet bool
}

// Setup returns the logger and a function that closes the debug file.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var handlers []slog.Handler
	if !opts.Quiet {
		handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	closeFn := func() error { return nil }
	if opts.Debug {
		path := opts.DebugPath
		if path == "" {
			path = DebugLogPath
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("creating debug log: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closeFn = f.Close
	}

	logger := slog.New(multiHandler(handlers))
	if opts.Debug {
		logger.Debug("debug log started", "pid", os.Getpid())
	}
	return logger, closeFn, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// multiHandler sends each record to every handler that accepts its level.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
