// Package app wires a rendering session onto a HAL.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"voronoi/config"
	"voronoi/hal"
	"voronoi/internal/buildinfo"
	"voronoi/progressive"
	"voronoi/surface"
	"voronoi/voronoi"
)

// App is one session: a renderer drawing into an indexed surface whose
// presented frames are pushed to the HAL framebuffer.
type App struct {
	h    hal.HAL
	cfg  config.Config
	log  *slog.Logger
	surf *surface.Indexed
	sink *surface.FramebufferSink
	stop *surface.KeyStop
	r    *progressive.Renderer

	st   progressive.State
	last progressive.FrameStats

	ticks     <-chan uint64
	tick      uint64
	startTick uint64
	doneTick  uint64
	started   bool
}

// Option configures an App.
type Option func(*options)

type options struct {
	logger *slog.Logger
	level  slog.Level
}

// WithLogger replaces the HAL-backed logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLogLevel sets the minimum level of the HAL-backed logger.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// New validates cfg and prepares a session on h. Nothing is drawn until the
// first Step.
func New(h hal.HAL, cfg config.Config, opts ...Option) (*App, error) {
	if h == nil {
		return nil, fmt.Errorf("app: nil HAL: %w", voronoi.ErrInvalidConfiguration)
	}
	o := options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = NewLogger(h.Logger(), o.level)
	}

	seeds, err := cfg.SeedPoints()
	if err != nil {
		return nil, err
	}
	metric, err := cfg.DistanceMetric()
	if err != nil {
		return nil, err
	}
	eval, err := voronoi.NewBruteForce(seeds, metric)
	if err != nil {
		return nil, err
	}
	surf, err := surface.NewIndexed(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	a := &App{h: h, cfg: cfg, log: log, surf: surf}

	if d := h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			sink, err := surface.NewFramebufferSink(fb)
			if err != nil {
				return nil, err
			}
			if cfg.HUD {
				sink.SetStatus(a.status)
			}
			surf.OnPresent(sink.Blit)
			a.sink = sink
		}
	}
	if a.sink == nil {
		log.Warn("no framebuffer, frames stay in memory")
	}

	var kbd hal.Keyboard
	if in := h.Input(); in != nil {
		kbd = in.Keyboard()
	}
	a.stop = surface.NewKeyStop(kbd)

	if t := h.Time(); t != nil {
		a.ticks = t.Ticks()
	}

	ropts := append(cfg.RendererOptions(), progressive.WithLogger(log))
	a.r, err = progressive.New(surf, eval, seeds, ropts...)
	if err != nil {
		return nil, err
	}
	a.st = a.r.Start()

	log.Info("voronoi session",
		"build", buildinfo.String(),
		"width", cfg.Width,
		"height", cfg.Height,
		"metric", metric.String(),
		"seeds", len(seeds),
		"start_level", a.st.Level,
	)
	return a, nil
}

// Step renders one frame. It returns hal.ErrStopped once a key has been
// pressed; the last presented frame stays on screen.
func (a *App) Step() error {
	a.drainTicks()
	if !a.started {
		a.started = true
		a.startTick = a.tick
	}
	if a.stop.StopRequested() {
		a.log.Info("stop requested", "level", a.st.Level, "converged", a.st.Converged)
		return hal.ErrStopped
	}

	next, stats, err := a.r.RenderFrame(a.st)
	if err != nil {
		return err
	}
	if next.Converged && !a.st.Converged {
		a.doneTick = a.tick
		a.log.Info("refined", "ms", a.doneTick-a.startTick)
	}
	a.st, a.last = next, stats
	return nil
}

// Run steps until a key is pressed, ctx ends or a frame fails. A frame
// failure is shown on the fatal screen before it is returned.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Step(); err != nil {
			if errors.Is(err, hal.ErrStopped) {
				return nil
			}
			ShowFatal(a.h, err)
			return err
		}
	}
}

// State returns the refinement state after the last Step.
func (a *App) State() progressive.State { return a.st }

// LastFrame returns statistics of the last rendered frame.
func (a *App) LastFrame() progressive.FrameStats { return a.last }

// Snapshot returns the last presented frame without the status line.
func (a *App) Snapshot() *image.Paletted { return a.surf.Snapshot() }

// Frames returns the number of frames presented so far.
func (a *App) Frames() uint64 { return a.surf.Frames() }

func (a *App) drainTicks() {
	for a.ticks != nil {
		select {
		case seq, ok := <-a.ticks:
			if !ok {
				a.ticks = nil
				return
			}
			a.tick = seq
		default:
			return
		}
	}
}

// status is the HUD line. It is called from Present, before Step stores the
// new state, so it reports the level that is being drawn.
func (a *App) status() string {
	if a.st.Converged {
		return fmt.Sprintf("done %dms", a.doneTick-a.startTick)
	}
	return fmt.Sprintf("L%d %dpx %dms", a.st.Level, a.st.Block(), a.tick-a.startTick)
}

// Run starts a session on h and blocks until a key is pressed. Errors end up
// on the fatal screen. Used by the device entry point.
func Run(h hal.HAL, cfg config.Config) error {
	a, err := New(h, cfg)
	if err != nil {
		ShowFatal(h, err)
		return err
	}
	return a.Run(context.Background())
}
