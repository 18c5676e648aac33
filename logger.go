package pixcil

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so attributes are
// never built for a silent logger.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger routes the log output of pixcil and its subpackages to l.
// A nil l silences it again, which is also the state before the first call.
//
// Debug records trace the command log (append, undo, redo, forget) and
// workspace decoding. Info and Warn records come from collaborators such as
// the library and the command line tool.
//
//	pixcil.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//		&slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger installed by SetLogger. It is safe to call
// concurrently with SetLogger.
func Logger() *slog.Logger { return active.Load() }
