//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"machine"
	"time"
)

// ili9488 drives the PicoCalc panel over SPI1 in 16bpp mode.
type ili9488 struct {
	spi machine.SPI
	cs  machine.Pin
	dc  machine.Pin
	rst machine.Pin

	txBuf []byte
}

type ili9488Cmd struct {
	op    byte
	data  []byte
	delay time.Duration
}

var ili9488Init = []ili9488Cmd{
	{op: 0xC0, data: []byte{0x17, 0x15}},             // PWCTRL1
	{op: 0xC1, data: []byte{0x41}},                   // PWCTRL2
	{op: 0xC5, data: []byte{0x00, 0x12, 0x80, 0x40}}, // VMCTRL
	{op: 0x3A, data: []byte{0x55}},                   // COLMOD 16bpp
	{op: 0xB1, data: []byte{0xA0, 0x11}},             // FRMCTRL1
	{op: 0xB6, data: []byte{0x02, 0x22, 0x27}},       // DISCTRL, 320 lines
	{op: 0x21},                                       // INVON
	{op: 0x36, data: []byte{0x40 | 0x04 | 0x08}},     // MADCTL MX|MH|BGR
	{op: 0x11, delay: 120 * time.Millisecond},        // SLPOUT
	{op: 0x29},                                       // DISPON
}

func initILI9488() (*ili9488, error) {
	if machine.SPI1 == nil {
		return nil, errors.New("SPI1 unavailable")
	}

	if err := machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	}); err != nil {
		return nil, err
	}

	lcd := &ili9488{
		spi:   *machine.SPI1,
		cs:    machine.GP13,
		dc:    machine.GP14,
		rst:   machine.GP15,
		txBuf: make([]byte, 4096),
	}
	for _, p := range []machine.Pin{lcd.cs, lcd.dc, lcd.rst} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
	}

	lcd.rst.Low()
	time.Sleep(64 * time.Millisecond)
	lcd.rst.High()
	time.Sleep(140 * time.Millisecond)

	for _, c := range ili9488Init {
		lcd.cmd(c.op, c.data...)
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
	}
	return lcd, nil
}

func (d *ili9488) cmd(op byte, data ...byte) {
	d.cs.Low()
	d.dc.Low()
	d.spi.Tx([]byte{op}, nil)
	d.dc.High()
	if len(data) > 0 {
		d.spi.Tx(data, nil)
	}
	d.cs.High()
}

func (d *ili9488) setWindow(x0, y0, x1, y1 uint16) {
	d.cmd(0x2A, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	d.cmd(0x2B, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	d.cmd(0x2C)
}

// blitRGB565LittleEndian streams a full frame, swapping each pixel to the
// big-endian order the panel expects.
func (d *ili9488) blitRGB565LittleEndian(buf []byte, w, h int) error {
	total := w * h * 2
	if w <= 0 || h <= 0 || len(buf) < total {
		return errors.New("invalid framebuffer")
	}
	chunk := d.txBuf[:len(d.txBuf)&^1]
	if len(chunk) < 2 {
		return errors.New("tx buffer too small")
	}

	d.setWindow(0, 0, uint16(w-1), uint16(h-1))
	d.cs.Low()
	d.dc.High()
	for off := 0; off < total; {
		n := min(len(chunk), total-off)
		src := buf[off : off+n]
		for i := 0; i+1 < n; i += 2 {
			chunk[i] = src[i+1]
			chunk[i+1] = src[i]
		}
		d.spi.Tx(chunk[:n], nil)
		off += n
	}
	d.cs.High()
	return nil
}
