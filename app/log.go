package app

import (
	"bytes"
	"context"
	"log/slog"

	"voronoi/hal"
)

// NewLogger returns a text logger whose records become lines on l. A nil l
// discards everything.
func NewLogger(l hal.Logger, level slog.Leveler) *slog.Logger {
	if l == nil {
		return slog.New(discardHandler{})
	}
	return slog.New(slog.NewTextHandler(lineWriter{l: l}, &slog.HandlerOptions{Level: level}))
}

// lineWriter feeds slog output to a hal.Logger one line at a time.
type lineWriter struct {
	l hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte{'\n'}) {
		w.l.WriteLineBytes(line)
	}
	return len(p), nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
