//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Width   int
	Height  int
	Hz      int
	Ticks   uint64

	// Log receives log lines; nil means stdout.
	Log io.Writer
	// Keys, when set, is read byte by byte; every byte is a key press.
	Keys io.Reader
}

// RunHeadless drives the app step from a ticker without opening a window.
//
// It returns nil when the step reports ErrStopped or the tick limit is
// reached, and ctx.Err() when ctx ends first.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, newApp func(HAL) (func() error, error)) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	out := cfg.Log
	if out == nil {
		out = os.Stdout
	}

	h := newHostHAL(cfg.Width, cfg.Height, out)
	step, err := newApp(h)
	if err != nil {
		return err
	}
	if cfg.Keys != nil {
		go feedKeys(h.kbd, cfg.Keys)
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step(1)
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrStopped) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// feedKeys turns bytes from r into key presses until r fails.
func feedKeys(k *hostKeyboard, r io.Reader) {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			ev := KeyEvent{Press: true, Rune: rune(b[0])}
			switch b[0] {
			case '\r', '\n':
				ev.Code = KeyEnter
			case 0x1b:
				ev.Code = KeyEscape
			}
			select {
			case k.ch <- ev:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}
