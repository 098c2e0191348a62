package surface

import (
	"voronoi/hal"
	"voronoi/progressive"
)

// KeyStop requests a stop on any key press.
//
// StopRequested drains pending events without blocking. Once a press has been
// seen the request latches.
type KeyStop struct {
	events  <-chan hal.KeyEvent
	stopped bool
}

var _ progressive.StopSignal = (*KeyStop)(nil)

// NewKeyStop watches kbd. A nil keyboard never requests a stop.
func NewKeyStop(kbd hal.Keyboard) *KeyStop {
	s := &KeyStop{}
	if kbd != nil {
		s.events = kbd.Events()
	}
	return s
}

func (s *KeyStop) StopRequested() bool {
	for !s.stopped {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.events = nil
				return false
			}
			if ev.Press {
				s.stopped = true
			}
		default:
			return false
		}
	}
	return true
}
