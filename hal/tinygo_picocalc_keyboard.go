//go:build tinygo && baremetal && picocalc

package hal

import (
	"errors"
	"machine"
	"time"
)

const (
	picoCalcKbdAddr uint16 = 0x1F
	picoCalcKbdFIFO        = 0x09
)

// Event types reported by the keyboard controller FIFO.
const (
	picoCalcKeyPressed  byte = 0x01
	picoCalcKeyHeld     byte = 0x02
	picoCalcKeyReleased byte = 0x03
)

var picoCalcKeyCodes = map[byte]KeyCode{
	0x08: KeyBackspace,
	0xB1: KeyEscape,
	0xD4: KeyDelete,
	0xD2: KeyHome,
	0xD5: KeyEnd,
	0xB4: KeyLeft,
	0xB7: KeyRight,
	0xB5: KeyUp,
	0xB6: KeyDown,
	0x81: KeyF1,
	0x82: KeyF2,
	0x83: KeyF3,
	0x0A: KeyEnter,
	0x0D: KeyEnter,
}

// Modifier keys never count as a key press on their own.
const (
	picoCalcKeyAlt  byte = 0xA1
	picoCalcKeyCtrl byte = 0xA5
)

type i2cKeyboard struct {
	i2c   *machine.I2C
	write [1]byte
	read  [2]byte
}

func initI2CKeyboard() (*i2cKeyboard, error) {
	// Stock PicoCalc wiring is I2C1; some TinyGo targets only expose I2C0.
	for _, bus := range []*machine.I2C{machine.I2C1, machine.I2C0} {
		if bus == nil {
			continue
		}
		for _, freq := range []uint32{100_000, 400_000} {
			if err := bus.Configure(machine.I2CConfig{
				SCL:       machine.GP7,
				SDA:       machine.GP6,
				Frequency: freq,
			}); err != nil {
				continue
			}

			k := &i2cKeyboard{i2c: bus, write: [1]byte{picoCalcKbdFIFO}}

			// The keyboard MCU can be slow to respond after power-on.
			for i := 0; i < 50; i++ {
				if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err == nil {
					return k, nil
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}

	return nil, errors.New("keyboard: I2C unavailable")
}

// readEvent pops one FIFO entry. Held keys and modifiers are ignored.
func (k *i2cKeyboard) readEvent() (KeyEvent, bool) {
	if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err != nil {
		return KeyEvent{}, false
	}
	state, key := k.read[0], k.read[1]
	if key == 0 || key == picoCalcKeyAlt || key == picoCalcKeyCtrl {
		return KeyEvent{}, false
	}

	switch state {
	case picoCalcKeyPressed, picoCalcKeyReleased:
		ev := KeyEvent{Press: state == picoCalcKeyPressed, Code: picoCalcKeyCodes[key]}
		if ev.Code == KeyUnknown && key < 0x80 {
			ev.Rune = rune(key)
		}
		return ev, true
	default:
		return KeyEvent{}, false
	}
}
