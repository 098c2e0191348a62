// Package surface provides presentation surfaces for the progressive
// renderer.
package surface

import (
	"fmt"
	"image"

	"voronoi/palette"
	"voronoi/progressive"
	"voronoi/voronoi"
)

// PresentFunc receives every presented frame as row-major palette indices.
// The slice is only valid for the duration of the call.
type PresentFunc func(frame []uint8, w, h int) error

// Indexed is a double-buffered surface of palette indices.
//
// Drawing goes to the working buffer. Present copies it to the presented
// buffer and hands the result to the present hooks.
type Indexed struct {
	w, h  int
	color uint8

	work  []uint8
	front []uint8

	frames uint64
	hooks  []PresentFunc
}

var _ progressive.Surface = (*Indexed)(nil)

// NewIndexed returns a w×h surface with both buffers at index 0.
func NewIndexed(w, h int) (*Indexed, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface: size %dx%d: %w", w, h, voronoi.ErrInvalidConfiguration)
	}
	return &Indexed{
		w:     w,
		h:     h,
		work:  make([]uint8, w*h),
		front: make([]uint8, w*h),
	}, nil
}

// OnPresent registers a hook called after each Present, in registration
// order.
func (s *Indexed) OnPresent(fn PresentFunc) {
	if fn != nil {
		s.hooks = append(s.hooks, fn)
	}
}

func (s *Indexed) Size() (w, h int)     { return s.w, s.h }
func (s *Indexed) SetColor(index uint8) { s.color = index }

// FillRect fills the part of the rectangle that lies on the surface.
func (s *Indexed) FillRect(x, y, w, h int) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, s.w), min(y+h, s.h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	c := s.color
	for yy := y0; yy < y1; yy++ {
		row := s.work[yy*s.w+x0 : yy*s.w+x1]
		for i := range row {
			row[i] = c
		}
	}
}

func (s *Indexed) CopyPresentedIntoWorking() {
	copy(s.work, s.front)
}

// Present publishes the working buffer and runs the hooks. The first hook
// error is returned; the frame counts as presented either way.
func (s *Indexed) Present() error {
	copy(s.front, s.work)
	s.frames++
	for _, fn := range s.hooks {
		if err := fn(s.front, s.w, s.h); err != nil {
			return err
		}
	}
	return nil
}

// Frames returns the number of Present calls.
func (s *Indexed) Frames() uint64 { return s.frames }

// At returns the working buffer index at (x, y), or 0 outside the surface.
func (s *Indexed) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0
	}
	return s.work[y*s.w+x]
}

// PresentedAt returns the presented buffer index at (x, y), or 0 outside the
// surface.
func (s *Indexed) PresentedAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return 0
	}
	return s.front[y*s.w+x]
}

// Snapshot copies the presented frame into a paletted image.
func (s *Indexed) Snapshot() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, s.w, s.h), palette.Palette())
	copy(img.Pix, s.front)
	return img
}
