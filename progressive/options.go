package progressive

import (
	"context"
	"log/slog"
)

// DefaultMarkerSize is the side of the square drawn over each seed.
const DefaultMarkerSize = 10

// Option configures a Renderer.
type Option func(*options)

type options struct {
	markerSize  int
	markerColor uint8
	startLevel  int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		markerSize:  DefaultMarkerSize,
		markerColor: 0,
		logger:      slog.New(nopHandler{}),
	}
}

// WithMarker sets the seed marker size and palette color. Size 0 disables
// markers.
func WithMarker(size int, color uint8) Option {
	return func(o *options) {
		o.markerSize = size
		o.markerColor = color
	}
}

// WithStartLevel overrides the level derived from the surface size.
func WithStartLevel(level int) Option {
	return func(o *options) {
		o.startLevel = level
	}
}

// WithLogger sets the logger for frame diagnostics. Nil keeps the renderer
// silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(nopHandler{})
		}
		o.logger = l
	}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
