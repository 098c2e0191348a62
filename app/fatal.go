package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"voronoi/hal"
	"voronoi/surface"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	fatalLineHeight = 12
	fatalBaseline   = 9
	fatalMargin     = 4
)

// ShowFatal logs err and paints it on a white screen. It returns after the
// frame is presented; halting is up to the caller.
func ShowFatal(h hal.HAL, err error) {
	if h == nil || err == nil {
		return
	}
	msg := err.Error()
	if l := h.Logger(); l != nil {
		l.WriteLineString("voronoi: fatal: " + msg)
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}

	fb.ClearRGB(255, 255, 255)

	font := &proggy.TinySZ8pt7b
	_, glyphW := tinyfont.LineWidth(font, "0")
	cols := 1
	if glyphW > 0 {
		cols = max((fb.Width()-2*fatalMargin)/int(glyphW), 1)
	}

	d := surface.NewDisplayer(fb)
	fg := color.RGBA{A: 255}
	y := fatalMargin
	for _, line := range fatalLines(msg) {
		for line != "" {
			if y+fatalLineHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, int16(fatalMargin), int16(y+fatalBaseline), chunk, fg)
			y += fatalLineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

// fatalLines puts each link of a wrapped error chain on its own line.
func fatalLines(msg string) []string {
	lines := []string{"Voronoi: fatal error"}
	for _, part := range strings.Split(msg, ": ") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, fmt.Sprintf("  %s", part))
		}
	}
	return lines
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
