// Package palette maps 8-bit color indices to RGB.
//
// The table is a fixed 3-3-2 cube: bits 7..5 red, 4..2 green, 1..0 blue.
// Index 0 is black and index 255 is white.
package palette

import "image/color"

// Black is the marker color.
const Black uint8 = 0

// White is the brightest entry.
const White uint8 = 0xFF

var (
	table  [256]color.RGBA
	rgb565 [256]uint16
)

func init() {
	for i := 0; i < 256; i++ {
		r := uint8(((i >> 5) & 0x7) * 255 / 7)
		g := uint8(((i >> 2) & 0x7) * 255 / 7)
		b := uint8((i & 0x3) * 255 / 3)
		table[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
		rgb565[i] = RGB565From888(r, g, b)
	}
}

// RGBA returns the color at index i.
func RGBA(i uint8) color.RGBA { return table[i] }

// RGB565 returns the color at index i packed as rrrrrggggggbbbbb.
func RGB565(i uint8) uint16 { return rgb565[i] }

// RGB565From888 packs 8-bit channels into RGB565.
func RGB565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

// Palette returns the table as a color.Palette for image.Paletted.
func Palette() color.Palette {
	p := make(color.Palette, len(table))
	for i := range table {
		p[i] = table[i]
	}
	return p
}
