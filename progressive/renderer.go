// Package progressive draws a Voronoi partition coarse-to-fine, one
// resolution level per frame.
//
// Each frame starts from a copy of the previously presented image, refines it
// by halving the block size, overlays the seed markers and presents. Blocks
// whose top-left sample coincides with a block of the previous, coarser pass
// already hold the right color and are not repainted.
package progressive

import (
	"context"
	"fmt"
	"log/slog"

	"voronoi/voronoi"
)

// Surface is the pixel target the renderer draws through.
//
// FillRect must clip to the surface bounds. Present makes the working buffer
// visible; CopyPresentedIntoWorking seeds the next working buffer with it.
type Surface interface {
	Size() (w, h int)
	SetColor(index uint8)
	FillRect(x, y, w, h int)
	CopyPresentedIntoWorking()
	Present() error
}

// StopSignal reports a user request to stop. It must not block.
type StopSignal interface {
	StopRequested() bool
}

// StopFunc adapts a function to StopSignal.
type StopFunc func() bool

func (f StopFunc) StopRequested() bool { return f() }

// FrameStats describes one rendered frame.
type FrameStats struct {
	Level     int // level the frame was drawn at
	Block     int
	Cells     int // grid cells visited
	Filled    int
	Skipped   int
	Converged bool // no refinement happened
}

// Renderer owns the surface, evaluator and seed set of a session. It holds no
// frame state: State is passed in and returned by RenderFrame.
type Renderer struct {
	surface Surface
	eval    voronoi.Evaluator
	seeds   []voronoi.Seed

	w, h  int
	start int

	markerSize  int
	markerColor uint8

	log *slog.Logger
}

// New validates the session and returns a renderer.
func New(s Surface, eval voronoi.Evaluator, seeds []voronoi.Seed, opts ...Option) (*Renderer, error) {
	if s == nil {
		return nil, fmt.Errorf("progressive: nil surface: %w", voronoi.ErrInvalidConfiguration)
	}
	if eval == nil {
		return nil, fmt.Errorf("progressive: nil evaluator: %w", voronoi.ErrInvalidConfiguration)
	}
	if err := voronoi.ValidateSeeds(seeds); err != nil {
		return nil, err
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("progressive: surface %dx%d: %w", w, h, voronoi.ErrInvalidConfiguration)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.markerSize < 0 {
		return nil, fmt.Errorf("progressive: marker size %d: %w", o.markerSize, voronoi.ErrInvalidConfiguration)
	}
	start := o.startLevel
	if start == 0 {
		start = StartLevel(w, h)
	}
	if start < 1 || start > 30 {
		return nil, fmt.Errorf("progressive: start level %d: %w", start, voronoi.ErrInvalidConfiguration)
	}

	cp := make([]voronoi.Seed, len(seeds))
	copy(cp, seeds)
	return &Renderer{
		surface:     s,
		eval:        eval,
		seeds:       cp,
		w:           w,
		h:           h,
		start:       start,
		markerSize:  o.markerSize,
		markerColor: o.markerColor,
		log:         o.logger,
	}, nil
}

// StartLevel returns the level a fresh State begins at.
func (r *Renderer) StartLevel() int { return r.start }

// Start returns a fresh state.
func (r *Renderer) Start() State {
	return State{Level: r.start, First: true}
}

// RenderFrame draws one frame and returns the advanced state.
func (r *Renderer) RenderFrame(st State) (State, FrameStats, error) {
	r.surface.CopyPresentedIntoWorking()

	stats := FrameStats{Level: st.Level, Block: st.Block(), Converged: st.Converged}
	if !st.Converged {
		r.refine(st, &stats)
		if st.Level > 1 {
			st.Level--
		} else {
			st.Level = 1
			st.Converged = true
		}
		st.First = false
	}

	r.drawMarkers()

	if err := r.surface.Present(); err != nil {
		return st, stats, fmt.Errorf("progressive: present: %w", err)
	}

	if !stats.Converged {
		r.log.Debug("frame",
			"level", stats.Level,
			"block", stats.Block,
			"filled", stats.Filled,
			"skipped", stats.Skipped,
		)
		if st.Converged {
			r.log.Info("converged", "width", r.w, "height", r.h, "seeds", len(r.seeds))
		}
	}
	return st, stats, nil
}

// refine walks the grid of the current level. Cell (col, row) is skipped on
// every frame but the first when both indices are even: its top-left pixel is
// the top-left pixel of a cell of the previous pass, which was filled with the
// same sample over a region covering this cell.
func (r *Renderer) refine(st State, stats *FrameStats) {
	block := st.Block()
	for y, row := 0, 0; y < r.h; y, row = y+block, row+1 {
		bh := block
		if y+bh > r.h {
			bh = r.h - y
		}
		for x, col := 0, 0; x < r.w; x, col = x+block, col+1 {
			stats.Cells++
			if !st.First && row&1 == 0 && col&1 == 0 {
				stats.Skipped++
				continue
			}
			bw := block
			if x+bw > r.w {
				bw = r.w - x
			}
			r.surface.SetColor(r.eval.NearestColor(x, y))
			r.surface.FillRect(x, y, bw, bh)
			stats.Filled++
		}
	}
}

func (r *Renderer) drawMarkers() {
	if r.markerSize == 0 {
		return
	}
	half := r.markerSize >> 1
	r.surface.SetColor(r.markerColor)
	for _, s := range r.seeds {
		x0, y0 := s.X-half, s.Y-half
		x1, y1 := x0+r.markerSize, y0+r.markerSize
		if x0 < 0 {
			x0 = 0
		}
		if y0 < 0 {
			y0 = 0
		}
		if x1 > r.w {
			x1 = r.w
		}
		if y1 > r.h {
			y1 = r.h
		}
		if x0 >= x1 || y0 >= y1 {
			continue
		}
		r.surface.FillRect(x0, y0, x1-x0, y1-y0)
	}
}

// Run renders frames until stop reports a request, ctx is done or the surface
// fails. Stop is polled once per frame, before any drawing.
func (r *Renderer) Run(ctx context.Context, stop StopSignal, st State) (State, error) {
	for {
		if stop != nil && stop.StopRequested() {
			r.log.Info("stop requested", "level", st.Level, "converged", st.Converged)
			return st, nil
		}
		if err := ctx.Err(); err != nil {
			return st, err
		}
		next, _, err := r.RenderFrame(st)
		if err != nil {
			return next, err
		}
		st = next
	}
}
