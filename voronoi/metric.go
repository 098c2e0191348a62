package voronoi

import (
	"fmt"
	"strings"
)

// Metric selects the distance function used to rank seeds.
type Metric uint8

const (
	// Manhattan is |dx| + |dy|.
	Manhattan Metric = iota
	// SquaredEuclidean is dx² + dy². The root is never taken: only the
	// ordering of distances matters.
	SquaredEuclidean
)

func (m Metric) valid() bool {
	return m == Manhattan || m == SquaredEuclidean
}

// Distance returns the distance between two points.
//
// Deltas are taken as signed 64-bit values so neither subtraction order nor
// coordinate range can wrap.
func (m Metric) Distance(x1, y1, x2, y2 int) int64 {
	dx := int64(x1) - int64(x2)
	dy := int64(y1) - int64(y2)
	switch m {
	case SquaredEuclidean:
		return dx*dx + dy*dy
	default:
		return abs64(dx) + abs64(dy)
	}
}

func (m Metric) String() string {
	switch m {
	case Manhattan:
		return "manhattan"
	case SquaredEuclidean:
		return "squaredEuclidean"
	default:
		return fmt.Sprintf("Metric(%d)", uint8(m))
	}
}

// ParseMetric accepts "manhattan" and "squaredEuclidean" in any case.
// "squared_euclidean" and "squared-euclidean" are accepted as well.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manhattan", "taxicab":
		return Manhattan, nil
	case "squaredeuclidean", "squared_euclidean", "squared-euclidean":
		return SquaredEuclidean, nil
	default:
		return 0, fmt.Errorf("voronoi: unknown metric %q: %w", s, ErrInvalidConfiguration)
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
