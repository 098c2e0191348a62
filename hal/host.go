//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultWidth and DefaultHeight size the host framebuffer when a runner is
// given no dimensions.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
}

// NewHost returns a host HAL with a w×h framebuffer. Non-positive sizes fall
// back to the defaults.
func NewHost(w, h int) HAL {
	return newHostHAL(w, h, os.Stdout)
}

func newHostHAL(w, h int, logOut io.Writer) *hostHAL {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return &hostHAL{
		logger: &hostLogger{w: logOut},
		fb:     newHostFramebuffer(w, h),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
