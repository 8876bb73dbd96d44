package renderer

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// nopHandler discards all records. Enabled returns false so callers skip
// formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for the renderer. By default the package
// logs nothing. Pass nil to restore that.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

// ForwardTraceLog routes raylib's trace output through the renderer logger
// at or above minLevel.
func ForwardTraceLog(minLevel rl.TraceLogLevel) {
	rl.SetTraceLogLevel(minLevel)
	rl.SetTraceLogCallback(func(level int, text string) {
		logger().Log(context.Background(), traceLevel(rl.TraceLogLevel(level)), strings.TrimSpace(text), "source", "raylib")
	})
}

// traceLevel maps a raylib log level to slog.
func traceLevel(level rl.TraceLogLevel) slog.Level {
	switch {
	case level <= rl.LogDebug:
		return slog.LevelDebug
	case level == rl.LogInfo:
		return slog.LevelInfo
	case level == rl.LogWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
