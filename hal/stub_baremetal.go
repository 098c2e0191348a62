//go:build tinygo && baremetal && picocalc

package hal

// stubKeyboard stands in when the keyboard controller does not answer; the
// renderer then runs until power-off.
type stubKeyboard struct{}

func (k *stubKeyboard) Events() <-chan KeyEvent { return nil }
