//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type hostKeyboard struct {
	ch      chan KeyEvent
	pressed []ebiten.Key
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

var hostKeyCodes = map[ebiten.Key]KeyCode{
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyTab:        KeyTab,
	ebiten.KeyDelete:     KeyDelete,
	ebiten.KeyHome:       KeyHome,
	ebiten.KeyEnd:        KeyEnd,
	ebiten.KeyF1:         KeyF1,
	ebiten.KeyF2:         KeyF2,
	ebiten.KeyF3:         KeyF3,
}

// poll forwards keys pressed since the last tick. Every key produces an
// event, including ones without a KeyCode (reported as KeyUnknown).
func (k *hostKeyboard) poll() {
	emit := func(ev KeyEvent) {
		select {
		case k.ch <- ev:
		default:
		}
	}

	k.pressed = inpututil.AppendJustPressedKeys(k.pressed[:0])
	for _, key := range k.pressed {
		emit(KeyEvent{Code: hostKeyCodes[key], Press: true})
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		emit(KeyEvent{Press: true, Rune: r})
	}
}
