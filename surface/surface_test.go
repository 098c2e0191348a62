package surface

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"voronoi/hal"
	"voronoi/palette"
	"voronoi/voronoi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestNewIndexedRejectsEmpty(t *testing.T) {
	for _, sz := range [][2]int{{0, 1}, {1, 0}, {-3, 4}} {
		_, err := NewIndexed(sz[0], sz[1])
		assert.ErrorIs(t, err, voronoi.ErrInvalidConfiguration, "size %v", sz)
	}
}

func TestIndexedFillRectClips(t *testing.T) {
	s, err := NewIndexed(4, 3)
	require.NoError(t, err)

	s.SetColor(7)
	s.FillRect(-2, -2, 4, 4) // covers (0,0)..(1,1)
	s.SetColor(9)
	s.FillRect(3, 2, 10, 10) // covers (3,2)
	s.FillRect(10, 10, 2, 2) // off surface

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := uint8(0)
			switch {
			case x < 2 && y < 2:
				want = 7
			case x == 3 && y == 2:
				want = 9
			}
			assert.Equal(t, want, s.At(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, uint8(0), s.At(-1, 0))
	assert.Equal(t, uint8(0), s.At(4, 0))
}

func TestIndexedPresentAndCopyForward(t *testing.T) {
	s, err := NewIndexed(2, 2)
	require.NoError(t, err)

	s.SetColor(5)
	s.FillRect(0, 0, 2, 2)
	assert.Equal(t, uint8(0), s.PresentedAt(0, 0), "working buffer leaked before Present")

	require.NoError(t, s.Present())
	assert.Equal(t, uint64(1), s.Frames())
	assert.Equal(t, uint8(5), s.PresentedAt(1, 1))

	s.SetColor(1)
	s.FillRect(0, 0, 1, 1)
	s.CopyPresentedIntoWorking()
	assert.Equal(t, uint8(5), s.At(0, 0))
}

func TestIndexedHooks(t *testing.T) {
	s, err := NewIndexed(3, 1)
	require.NoError(t, err)

	var order []string
	var seen []uint8
	s.OnPresent(func(frame []uint8, w, h int) error {
		order = append(order, "a")
		seen = append([]uint8(nil), frame...)
		assert.Equal(t, 3, w)
		assert.Equal(t, 1, h)
		return nil
	})
	s.OnPresent(nil)
	boom := errors.New("boom")
	s.OnPresent(func([]uint8, int, int) error {
		order = append(order, "b")
		return boom
	})
	s.OnPresent(func([]uint8, int, int) error {
		order = append(order, "c")
		return nil
	})

	s.SetColor(2)
	s.FillRect(1, 0, 1, 1)
	err = s.Present()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []uint8{0, 2, 0}, seen)
	assert.Equal(t, uint64(1), s.Frames())
}

func TestIndexedSnapshot(t *testing.T) {
	s, err := NewIndexed(2, 1)
	require.NoError(t, err)
	s.SetColor(palette.White)
	s.FillRect(1, 0, 1, 1)
	require.NoError(t, s.Present())

	img := s.Snapshot()
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, palette.Black, img.ColorIndexAt(0, 0))
	assert.Equal(t, palette.White, img.ColorIndexAt(1, 0))

	// The snapshot is a copy.
	s.FillRect(0, 0, 2, 1)
	require.NoError(t, s.Present())
	assert.Equal(t, palette.Black, img.ColorIndexAt(0, 0))
}

type testFramebuffer struct {
	w, h     int
	buf      []byte
	presents int
	err      error
}

func newTestFramebuffer(w, h int) *testFramebuffer {
	return &testFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFramebuffer) Width() int              { return f.w }
func (f *testFramebuffer) Height() int             { return f.h }
func (f *testFramebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFramebuffer) StrideBytes() int        { return f.w * 2 }
func (f *testFramebuffer) Buffer() []byte          { return f.buf }
func (f *testFramebuffer) ClearRGB(r, g, b uint8)  {}
func (f *testFramebuffer) Present() error          { f.presents++; return f.err }

func (f *testFramebuffer) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

func TestFramebufferSinkBlit(t *testing.T) {
	fb := newTestFramebuffer(3, 2)
	sink, err := NewFramebufferSink(fb)
	require.NoError(t, err)

	// A 4x3 frame is clipped to the 3x2 framebuffer.
	frame := []uint8{
		0, 0xE0, 0x1C, 0x03,
		0xFF, 0, 0, 0,
		9, 9, 9, 9,
	}
	require.NoError(t, sink.Blit(frame, 4, 3))
	assert.Equal(t, 1, fb.presents)
	assert.Equal(t, palette.RGB565(0), fb.pixel(0, 0))
	assert.Equal(t, palette.RGB565(0xE0), fb.pixel(1, 0))
	assert.Equal(t, palette.RGB565(0x1C), fb.pixel(2, 0))
	assert.Equal(t, palette.RGB565(0xFF), fb.pixel(0, 1))
}

func TestFramebufferSinkPresentError(t *testing.T) {
	fb := newTestFramebuffer(1, 1)
	fb.err = errors.New("bus")
	sink, err := NewFramebufferSink(fb)
	require.NoError(t, err)
	assert.ErrorIs(t, sink.Blit([]uint8{0}, 1, 1), fb.err)
}

func TestFramebufferSinkRejectsNil(t *testing.T) {
	_, err := NewFramebufferSink(nil)
	assert.Error(t, err)
}

func TestFramebufferSinkStatusLine(t *testing.T) {
	const w, h = 64, 24
	fb := newTestFramebuffer(w, h)
	sink, err := NewFramebufferSink(fb)
	require.NoError(t, err)

	frame := make([]uint8, w*h)
	for i := range frame {
		frame[i] = 0x1C
	}
	green := palette.RGB565(0x1C)

	sink.SetStatus(func() string { return "" })
	require.NoError(t, sink.Blit(frame, w, h))
	assert.Equal(t, green, fb.pixel(0, 0), "empty status must not draw")

	sink.SetStatus(func() string { return "L3" })
	require.NoError(t, sink.Blit(frame, w, h))
	assert.Equal(t, palette.RGB565(palette.Black), fb.pixel(0, 0))
	assert.Equal(t, green, fb.pixel(w-1, h-1), "status box must stay in the top band")

	white := 0
	for y := 0; y < statusHeight; y++ {
		for x := 0; x < w; x++ {
			if fb.pixel(x, y) == 0xFFFF {
				white++
			}
		}
	}
	assert.Positive(t, white, "status text was not rendered")
}

func TestDisplayerSetPixelClips(t *testing.T) {
	fb := newTestFramebuffer(2, 2)
	d := NewDisplayer(fb)
	x, y := d.Size()
	assert.Equal(t, int16(2), x)
	assert.Equal(t, int16(2), y)

	d.SetPixel(1, 1, palette.RGBA(palette.White))
	d.SetPixel(-1, 0, palette.RGBA(palette.White))
	d.SetPixel(2, 0, palette.RGBA(palette.White))
	assert.Equal(t, uint16(0xFFFF), fb.pixel(1, 1))
	assert.Equal(t, uint16(0), fb.pixel(0, 0))
	assert.NoError(t, d.Display())
}

type testKeyboard struct{ ch chan hal.KeyEvent }

func (k testKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

func TestKeyStop(t *testing.T) {
	kbd := testKeyboard{ch: make(chan hal.KeyEvent, 4)}
	s := NewKeyStop(kbd)
	assert.False(t, s.StopRequested())

	kbd.ch <- hal.KeyEvent{Press: false, Rune: 'x'}
	assert.False(t, s.StopRequested(), "release must not stop")

	kbd.ch <- hal.KeyEvent{Press: true, Code: hal.KeyUnknown}
	assert.True(t, s.StopRequested())
	assert.True(t, s.StopRequested(), "stop must latch")
}

func TestKeyStopClosedAndNil(t *testing.T) {
	kbd := testKeyboard{ch: make(chan hal.KeyEvent)}
	close(kbd.ch)
	s := NewKeyStop(kbd)
	assert.False(t, s.StopRequested())
	assert.False(t, s.StopRequested())

	assert.False(t, NewKeyStop(nil).StopRequested())
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.png":        FormatPNG,
		"dir/B.PNG":    FormatPNG,
		"c.bmp":        FormatBMP,
		"d.tif":        FormatTIFF,
		"e.tiff":       FormatTIFF,
		"/tmp/x.y.Tif": FormatTIFF,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("frame.jpg")
	assert.Error(t, err)
	_, err = FormatFromPath("noext")
	assert.Error(t, err)
}

func snapshotFixture(t *testing.T) *image.Paletted {
	t.Helper()
	s, err := NewIndexed(3, 2)
	require.NoError(t, err)
	s.SetColor(0xE0)
	s.FillRect(0, 0, 1, 2)
	s.SetColor(palette.White)
	s.FillRect(2, 1, 1, 1)
	require.NoError(t, s.Present())
	return s.Snapshot()
}

func TestEncodeRoundTripsPixels(t *testing.T) {
	img := snapshotFixture(t)
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		FormatPNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		FormatBMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		FormatTIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}
	for f, decode := range decoders {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, f), f.String())
		got, err := decode(&buf)
		require.NoError(t, err, f.String())
		require.Equal(t, img.Bounds(), got.Bounds(), f.String())
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				wr, wg, wb, _ := img.At(x, y).RGBA()
				gr, gg, gb, _ := got.At(x, y).RGBA()
				assert.Equal(t, [3]uint32{wr, wg, wb}, [3]uint32{gr, gg, gb}, "%s (%d,%d)", f, x, y)
			}
		}
	}
	assert.Error(t, Encode(&bytes.Buffer{}, img, Format(42)))
}

func TestWriteFile(t *testing.T) {
	img := snapshotFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	require.NoError(t, WriteFile(path, img))
	assert.FileExists(t, path)

	assert.Error(t, WriteFile(filepath.Join(dir, "out.gif"), img))
	assert.NoFileExists(t, filepath.Join(dir, "out.gif"))
}
