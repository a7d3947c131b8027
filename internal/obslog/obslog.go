// Package obslog is the small structured-logging wrapper used by the
// cmd/intcode driver (debugger and monitor do not import it). It is deliberately not
// imported by the vm package: per §9.A of the spec, the VM's only
// observable behavior is its ports and its returned error, and a logging
// call in the fetch-decode-execute loop would be an unspecified extra
// surface. This wrapper mirrors the shape of rcornwell-S370's
// util/logger.LogHandler — a slog.Handler guarding a single writer with a
// mutex and a debug-level override — without pulling in that project's
// config plumbing.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// handler is a minimal slog.Handler that text-formats records and writes
// them through a mutex-guarded writer, dropping records below its level.
// It writes to that one writer only; nothing is echoed to stderr or any
// second sink.
type handler struct {
	out   io.Writer
	mu    *sync.Mutex
	level slog.Level
}

// New builds a slog.Logger writing to out at the given minimum level.
func New(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&handler{out: out, mu: &sync.Mutex{}, level: level})
}

// Default returns a logger writing to stderr at the level named by the
// INTCODE_LOG_LEVEL environment variable (debug, info, warn, error;
// default info).
func Default() *slog.Logger {
	return New(os.Stderr, levelFromEnv())
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("INTCODE_LOG_LEVEL")) {
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

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{
		r.Time.Format("2006/01/02 15:04:05"),
		r.Level.String() + ":",
		r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, strings.Join(parts, " ")+"\n")
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// The driver tools in this repository log with plain key/value pairs
	// per call rather than building long-lived attribute groups, so
	// WithAttrs/WithGroup are implemented for slog.Handler compliance but
	// are not exercised on any hot path.
	return h
}

func (h *handler) WithGroup(_ string) slog.Handler {
	return h
}
