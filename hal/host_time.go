//go:build !tinygo

package hal

import "time"

// hostTickDuration matches the 1 ms tick of the device HAL.
const hostTickDuration = time.Millisecond

// hostTime converts wall-clock time elapsed between runner steps into a
// stream of millisecond ticks. Ticks are dropped when nobody reads them.
type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) step(n uint64) {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / hostTickDuration)
	if ticks == 0 {
		return
	}
	t.acc %= hostTickDuration
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
