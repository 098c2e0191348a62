package progressive

// State is the resolution counter threaded through RenderFrame.
//
// Level is the step level: frames fill blocks of 2^(Level-1) pixels. It only
// ever decreases, one per frame, and stops at 1. Converged is set once the
// Level 1 pass (one sample per pixel) has been drawn; later frames only
// re-present the held image.
type State struct {
	Level     int
	First     bool
	Converged bool
}

// Block returns the fill size of the current level.
func (s State) Block() int {
	if s.Level < 1 {
		return 1
	}
	return 1 << (s.Level - 1)
}

// StartLevel returns the coarsest level for a w×h surface:
// log2 of the next power of two of the larger side, never below 1.
//
// The first pass therefore uses blocks of half that power of two, so even the
// longer side is split in two.
func StartLevel(w, h int) int {
	n := w
	if h > n {
		n = h
	}
	level := 0
	for p := 1; p < n; p <<= 1 {
		level++
	}
	if level < 1 {
		level = 1
	}
	return level
}

// FramesToConverge returns the number of frames a fresh state at level start
// needs before it reports Converged: one frame per level, down to and
// including level 1.
func FramesToConverge(start int) int {
	if start < 1 {
		start = 1
	}
	return start
}
