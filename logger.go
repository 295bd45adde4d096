// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cinema

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called from the UI goroutine while the render
// goroutine is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for cinema and all its sub-packages.
// By default, cinema produces no log output.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by cinema:
//   - [slog.LevelDebug]: per-frame diagnostics (evictions, prefetch hits, pool sizes)
//   - [slog.LevelInfo]: lifecycle events (ensemble loaded, scene closed)
//   - [slog.LevelWarn]: isolated failures (decode or upload errors, skipped entries)
//
// Example:
//
//	cinema.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by cinema.
// Sub-packages (scene/, database/, pool/) call this to share the same
// logger configuration without introducing import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
