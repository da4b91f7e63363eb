package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// SlogLogger adapts log/slog to ports.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// New creates a logger writing text records to w. Verbose lowers the level to debug.
func New(w io.Writer, verbose bool) *SlogLogger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{log: slog.New(handler).With("app", "aiterm")}
}

// NewStd creates a stderr logger.
func NewStd(verbose bool) *SlogLogger {
	return New(os.Stderr, verbose)
}

// Nop discards everything; used by tests and library callers.
func Nop() *SlogLogger {
	return New(io.Discard, false)
}

func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug(msg, attrs(fields)...)
}

func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info(msg, attrs(fields)...)
}

func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn(msg, attrs(fields)...)
}

func (l *SlogLogger) Error(msg string, err error, fields map[string]interface{}) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.log.Error(msg, args...)
}

// attrs flattens the field map in key order so output is stable.
func attrs(fields map[string]interface{}) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, slog.Any(key, fields[key]))
	}
	return out
}
