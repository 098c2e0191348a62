package surface

import (
	"errors"
	"image/color"

	"voronoi/hal"
	"voronoi/palette"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var errUnsupportedFormat = errors.New("surface: framebuffer is not RGB565")

// FramebufferSink converts presented frames to RGB565 and pushes them to a
// HAL framebuffer.
//
// The optional status line is drawn into the framebuffer after the frame is
// converted, so it never ends up in the retained image.
type FramebufferSink struct {
	fb     hal.Framebuffer
	status func() string
	fg     color.RGBA
	bg     uint16
}

// NewFramebufferSink returns a sink for fb.
func NewFramebufferSink(fb hal.Framebuffer) (*FramebufferSink, error) {
	if fb == nil {
		return nil, errors.New("surface: nil framebuffer")
	}
	if fb.Format() != hal.PixelFormatRGB565 {
		return nil, errUnsupportedFormat
	}
	return &FramebufferSink{
		fb: fb,
		fg: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		bg: palette.RGB565(palette.Black),
	}, nil
}

// SetStatus sets the function that provides the status line. An empty string
// hides it.
func (k *FramebufferSink) SetStatus(fn func() string) { k.status = fn }

// Blit implements PresentFunc.
func (k *FramebufferSink) Blit(frame []uint8, w, h int) error {
	buf := k.fb.Buffer()
	if buf == nil {
		return hal.ErrNotImplemented
	}
	stride := k.fb.StrideBytes()
	cw, ch := min(w, k.fb.Width()), min(h, k.fb.Height())
	for y := 0; y < ch; y++ {
		src := frame[y*w : y*w+cw]
		off := y * stride
		for x, idx := range src {
			p := palette.RGB565(idx)
			buf[off+x*2] = byte(p)
			buf[off+x*2+1] = byte(p >> 8)
		}
	}
	if k.status != nil {
		if s := k.status(); s != "" {
			k.drawStatus(s)
		}
	}
	return k.fb.Present()
}

const (
	statusPad    = 2
	statusHeight = 12
)

func (k *FramebufferSink) drawStatus(s string) {
	d := &fbDisplayer{fb: k.fb}
	font := &proggy.TinySZ8pt7b
	_, width := tinyfont.LineWidth(font, s)
	fillRGB565(k.fb, 0, 0, int(width)+2*statusPad, statusHeight, k.bg)
	tinyfont.WriteLine(d, font, statusPad, statusHeight-statusPad-1, s, k.fg)
}

func fillRGB565(fb hal.Framebuffer, x, y, w, h int, pixel uint16) {
	buf := fb.Buffer()
	stride := fb.StrideBytes()
	x1, y1 := min(x+w, fb.Width()), min(y+h, fb.Height())
	for yy := max(y, 0); yy < y1; yy++ {
		for xx := max(x, 0); xx < x1; xx++ {
			off := yy*stride + xx*2
			buf[off] = byte(pixel)
			buf[off+1] = byte(pixel >> 8)
		}
	}
}

// fbDisplayer adapts a framebuffer to drivers.Displayer for tinyfont.
type fbDisplayer struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*fbDisplayer)(nil)

func (d *fbDisplayer) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || iy < 0 || ix >= d.fb.Width() || iy >= d.fb.Height() {
		return
	}
	buf := d.fb.Buffer()
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	p := palette.RGB565From888(c.R, c.G, c.B)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

func (d *fbDisplayer) Display() error { return nil }

// NewDisplayer exposes a framebuffer as a drivers.Displayer.
func NewDisplayer(fb hal.Framebuffer) drivers.Displayer {
	return &fbDisplayer{fb: fb}
}
