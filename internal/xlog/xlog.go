// Package xlog provides the dispatch core's structured logging, in the
// teacher's log package idiom: a slog.Logger wrapped in a small interface
// with a package-level Root logger, a colorized terminal handler for
// interactive use, and a plain JSON handler for production log
// collection. Rebuilt from the API the teacher's log/*_test.go pin down
// (NewGlogHandler, NewTerminalHandlerWithLevel, JSONHandler, Root, New) —
// the teacher's own implementation source was not available to copy.
package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var levelColor = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

// Logger is the logging surface used throughout the dispatch core.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type logger struct {
	s *slog.Logger
}

// New wraps an slog.Handler as a Logger.
func New(h slog.Handler) Logger {
	return &logger{s: slog.New(h)}
}

func (l *logger) Debug(msg string, args ...any) { l.s.Log(context.Background(), slog.LevelDebug, msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.s.Log(context.Background(), slog.LevelInfo, msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.s.Log(context.Background(), slog.LevelWarn, msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.s.Log(context.Background(), slog.LevelError, msg, args...) }
func (l *logger) With(args ...any) Logger       { return &logger{s: l.s.With(args...)} }

// NewTerminalHandler builds a handler that prints colorized, aligned
// level-tagged lines to w, matching the teacher's terminal log format.
func NewTerminalHandler(w io.Writer, level slog.Level) slog.Handler {
	return &terminalHandler{w: w, level: level}
}

type terminalHandler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func (h *terminalHandler) Enabled(_ context.Context, lvl slog.Level) bool { return lvl >= h.level }

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	tag := levelTag(r.Level)
	c, ok := levelColor[r.Level]
	if ok && isColorable(h.w) {
		tag = c.Sprint(tag)
	}
	line := tag + " " + r.Message
	for _, a := range h.attrs {
		line += " " + a.Key + "=" + a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		line += " " + a.Key + "=" + a.Value.String()
		return true
	})
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &terminalHandler{w: h.w, level: h.level}
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return out
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler { return h }

func levelTag(lvl slog.Level) string {
	switch {
	case lvl >= slog.LevelError:
		return "ERROR"
	case lvl >= slog.LevelWarn:
		return "WARN "
	case lvl >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func isColorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// JSONHandler builds a handler emitting one JSON object per line,
// suitable for production log collection. It emits records at info level
// and above; debug records are dropped.
func JSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, nil)
}

// StdoutHandler returns a terminal handler writing to stdout through a
// colorable wrapper (needed on Windows consoles), defaulting to info
// level.
func StdoutHandler() slog.Handler {
	return NewTerminalHandler(colorable.NewColorableStdout(), slog.LevelInfo)
}

var root Logger = New(StdoutHandler())

// Root returns the package-level default logger.
func Root() Logger { return root }

// SetDefault replaces the package-level default logger.
func SetDefault(l Logger) { root = l }
