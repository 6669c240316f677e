// Package logging holds the logger shared by the floor placement core.
//
// By default nothing is logged. Commands enable output with SetLogger.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// attribute formatting on the per-frame path.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the shared logger. Pass nil to silence output again.
//
// Levels in use:
//   - Debug: per-frame diagnostics (candidate counts, depth texture reallocation)
//   - Info: lifecycle (session start and end, calibration, surfacing)
//   - Warn: degradations (anchor creation failed, depth unavailable)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// For returns the shared logger tagged with a component name.
func For(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}
