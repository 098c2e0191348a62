package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"voronoi/config"
	"voronoi/hal"
	"voronoi/palette"
	"voronoi/progressive"
	"voronoi/voronoi"
)

type testLogger struct{ lines []string }

func (l *testLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *testLogger) contains(sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type testFramebuffer struct {
	w, h     int
	buf      []byte
	presents int
	err      error
}

func (f *testFramebuffer) Width() int              { return f.w }
func (f *testFramebuffer) Height() int             { return f.h }
func (f *testFramebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFramebuffer) StrideBytes() int        { return f.w * 2 }
func (f *testFramebuffer) Buffer() []byte          { return f.buf }
func (f *testFramebuffer) Present() error          { f.presents++; return f.err }

func (f *testFramebuffer) ClearRGB(r, g, b uint8) {
	p := palette.RGB565From888(r, g, b)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = byte(p), byte(p>>8)
	}
}

func (f *testFramebuffer) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

type testKeyboard struct{ ch chan hal.KeyEvent }

func (k testKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type testTime struct{ ch chan uint64 }

func (t testTime) Ticks() <-chan uint64 { return t.ch }

type testHAL struct {
	log *testLogger
	fb  *testFramebuffer
	kbd testKeyboard
	t   testTime
}

func newTestHAL(w, h int) *testHAL {
	return &testHAL{
		log: &testLogger{},
		fb:  &testFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)},
		kbd: testKeyboard{ch: make(chan hal.KeyEvent, 8)},
		t:   testTime{ch: make(chan uint64, 8)},
	}
}

func (h *testHAL) Logger() hal.Logger   { return h.log }
func (h *testHAL) Display() hal.Display { return h }
func (h *testHAL) Input() hal.Input     { return h }
func (h *testHAL) Time() hal.Time       { return h.t }

func (h *testHAL) Framebuffer() hal.Framebuffer {
	if h.fb == nil {
		return nil
	}
	return h.fb
}

func (h *testHAL) Keyboard() hal.Keyboard { return h.kbd }

func smallConfig() config.Config {
	c := config.Default()
	c.Width, c.Height = 16, 8
	c.MarkerSize = 0
	c.Seeds = []config.Seed{
		{X: 2, Y: 2, Color: 0xE0},
		{X: 13, Y: 5, Color: 0x1C},
	}
	return c
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	h := newTestHAL(16, 8)
	c := smallConfig()
	c.Seeds = nil
	if _, err := New(h, c); !errors.Is(err, voronoi.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := New(nil, smallConfig()); !errors.Is(err, voronoi.ErrInvalidConfiguration) {
		t.Fatalf("nil HAL err = %v", err)
	}
	if h.fb.presents != 0 {
		t.Fatalf("invalid config presented %d frames", h.fb.presents)
	}
}

func TestStepConvergesAndBlits(t *testing.T) {
	h := newTestHAL(16, 8)
	a, err := New(h, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !h.log.contains("voronoi session") {
		t.Fatalf("startup not logged: %q", h.log.lines)
	}

	start := a.State().Level
	for i := 0; i < progressive.FramesToConverge(start); i++ {
		if err := a.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if !a.State().Converged {
		t.Fatalf("not converged after %d frames: %+v", start, a.State())
	}
	if h.fb.presents != start {
		t.Fatalf("presents = %d, want %d", h.fb.presents, start)
	}
	if a.Frames() != uint64(start) {
		t.Fatalf("frames = %d, want %d", a.Frames(), start)
	}

	img := a.Snapshot()
	if got := img.ColorIndexAt(0, 0); got != 0xE0 {
		t.Fatalf("(0,0) = %#x, want 0xe0", got)
	}
	if got := img.ColorIndexAt(15, 7); got != 0x1C {
		t.Fatalf("(15,7) = %#x, want 0x1c", got)
	}
	if got, want := h.fb.pixel(15, 7), palette.RGB565(0x1C); got != want {
		t.Fatalf("framebuffer (15,7) = %#04x, want %#04x", got, want)
	}
	if !h.log.contains("refined") {
		t.Fatalf("convergence not logged: %q", h.log.lines)
	}

	// Held frames keep presenting the same image.
	if err := a.Step(); err != nil {
		t.Fatalf("held Step: %v", err)
	}
	if !a.State().Converged || h.fb.presents != start+1 {
		t.Fatalf("held frame: state %+v presents %d", a.State(), h.fb.presents)
	}
}

func TestStepStopsOnKey(t *testing.T) {
	h := newTestHAL(16, 8)
	a, err := New(h, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	h.kbd.ch <- hal.KeyEvent{Press: true, Rune: 'q'}
	if err := a.Step(); !errors.Is(err, hal.ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
	if h.fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", h.fb.presents)
	}
	if err := a.Step(); !errors.Is(err, hal.ErrStopped) {
		t.Fatalf("stop did not latch: %v", err)
	}
}

func TestStepWithoutFramebuffer(t *testing.T) {
	h := newTestHAL(16, 8)
	h.fb = nil
	a, err := New(h, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if a.Frames() != 1 {
		t.Fatalf("frames = %d", a.Frames())
	}
}

func TestHUDStatus(t *testing.T) {
	h := newTestHAL(64, 32)
	c := smallConfig()
	c.Width, c.Height = 64, 32
	c.HUD = true
	a, err := New(h, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h.t.ch <- 5
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := a.status(); got != "L5 16px 0ms" {
		t.Fatalf("status = %q", got)
	}
	if got := h.fb.pixel(0, 0); got != palette.RGB565(palette.Black) {
		t.Fatalf("status box not drawn: %#04x", got)
	}
	if got := a.Snapshot().ColorIndexAt(0, 0); got != 0xE0 {
		t.Fatalf("status leaked into snapshot: %#x", got)
	}

	for !a.State().Converged {
		h.t.ch <- a.tick + 10
		if err := a.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if got := a.status(); got != "done 50ms" {
		t.Fatalf("status = %q", got)
	}
}

func TestRunStopsAndReportsErrors(t *testing.T) {
	h := newTestHAL(16, 8)
	a, err := New(h, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.kbd.ch <- hal.KeyEvent{Press: true}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	h = newTestHAL(16, 8)
	h.fb.err = errors.New("spi timeout")
	a, err = New(h, smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Run(context.Background()); !errors.Is(err, h.fb.err) {
		t.Fatalf("Run err = %v, want spi timeout", err)
	}
	if !h.log.contains("fatal") {
		t.Fatalf("fatal not logged: %q", h.log.lines)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, _ = New(newTestHAL(16, 8), smallConfig())
	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want canceled", err)
	}
}

func TestRunFunc(t *testing.T) {
	h := newTestHAL(16, 8)
	c := smallConfig()
	c.Metric = "euclid"
	if err := Run(h, c); !errors.Is(err, voronoi.ErrInvalidConfiguration) {
		t.Fatalf("Run err = %v", err)
	}
	if h.fb.presents != 1 {
		t.Fatalf("fatal screen not presented")
	}

	h = newTestHAL(16, 8)
	h.kbd.ch <- hal.KeyEvent{Press: true}
	if err := Run(h, smallConfig()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestShowFatalPaintsText(t *testing.T) {
	h := newTestHAL(120, 60)
	ShowFatal(h, errors.New("progressive: present: boom"))
	if h.fb.presents != 1 {
		t.Fatalf("presents = %d", h.fb.presents)
	}
	if got := h.fb.pixel(119, 59); got != 0xFFFF {
		t.Fatalf("background = %#04x, want white", got)
	}
	dark := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if h.fb.pixel(x, y) == 0 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("no text drawn")
	}

	ShowFatal(nil, errors.New("x"))
	ShowFatal(h, nil)
	if h.fb.presents != 1 {
		t.Fatalf("nil inputs presented")
	}
}

func TestFatalLinesAndTakeRunes(t *testing.T) {
	lines := fatalLines("config: size 0x0: invalid configuration")
	want := []string{"Voronoi: fatal error", "  config", "  size 0x0", "  invalid configuration"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q", lines)
	}

	for _, tc := range []struct {
		s          string
		n          int
		head, tail string
	}{
		{"hello", 10, "hello", ""},
		{"hello", 2, "he", "llo"},
		{"héllo", 2, "hé", "llo"},
		{"x", 0, "", "x"},
	} {
		head, tail := takeRunes(tc.s, tc.n)
		if head != tc.head || tail != tc.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q", tc.s, tc.n, head, tail)
		}
	}
}

func TestNewLogger(t *testing.T) {
	l := &testLogger{}
	log := NewLogger(l, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	if len(l.lines) != 1 || !strings.Contains(l.lines[0], "msg=shown") || !strings.Contains(l.lines[0], "k=1") {
		t.Fatalf("lines = %q", l.lines)
	}
	if strings.HasSuffix(l.lines[0], "\n") {
		t.Fatalf("line keeps newline")
	}

	NewLogger(nil, slog.LevelDebug).Info("discarded")
}
