// Package voronoi evaluates nearest-seed color partitions of a pixel grid.
//
// Seeds are searched by brute force: the seed sets this package is built for
// hold a few dozen points at most, and a linear scan per query is cheaper than
// maintaining an index. Callers that need something faster can provide their
// own Evaluator.
package voronoi

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration reports a seed set, surface or metric that cannot be
// rendered. It is fatal at startup.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Seed is one site of the partition.
type Seed struct {
	X, Y  int
	Color uint8 // palette index
}

// Evaluator maps a pixel to the color of the seed that owns it.
type Evaluator interface {
	NearestColor(x, y int) uint8
}

// BruteForce scans every seed on each query.
type BruteForce struct {
	seeds  []Seed
	metric Metric
}

var _ Evaluator = (*BruteForce)(nil)

// NewBruteForce returns an evaluator over a copy of seeds.
func NewBruteForce(seeds []Seed, m Metric) (*BruteForce, error) {
	if err := ValidateSeeds(seeds); err != nil {
		return nil, err
	}
	if !m.valid() {
		return nil, fmt.Errorf("voronoi: metric %d: %w", m, ErrInvalidConfiguration)
	}
	cp := make([]Seed, len(seeds))
	copy(cp, seeds)
	return &BruteForce{seeds: cp, metric: m}, nil
}

// ValidateSeeds checks that seeds is non-empty and has no negative coordinates.
func ValidateSeeds(seeds []Seed) error {
	if len(seeds) == 0 {
		return fmt.Errorf("voronoi: empty seed set: %w", ErrInvalidConfiguration)
	}
	for i, s := range seeds {
		if s.X < 0 || s.Y < 0 {
			return fmt.Errorf("voronoi: seed %d at (%d,%d): negative coordinate: %w", i, s.X, s.Y, ErrInvalidConfiguration)
		}
	}
	return nil
}

// Metric returns the distance metric used for queries.
func (b *BruteForce) Metric() Metric { return b.metric }

// Seeds returns the number of seeds.
func (b *BruteForce) Seeds() int { return len(b.seeds) }

// Nearest returns the index of the seed closest to (x, y).
//
// Equidistant seeds resolve to the lowest index.
func (b *BruteForce) Nearest(x, y int) int {
	best := 0
	bestDist := b.metric.Distance(x, y, b.seeds[0].X, b.seeds[0].Y)
	for i := 1; i < len(b.seeds); i++ {
		d := b.metric.Distance(x, y, b.seeds[i].X, b.seeds[i].Y)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// NearestColor returns the color of the seed closest to (x, y).
func (b *BruteForce) NearestColor(x, y int) uint8 {
	return b.seeds[b.Nearest(x, y)].Color
}

// NearestSeedColor is a one-shot query that does not retain seeds.
func NearestSeedColor(seeds []Seed, m Metric, x, y int) (uint8, error) {
	b, err := NewBruteForce(seeds, m)
	if err != nil {
		return 0, err
	}
	return b.NearestColor(x, y), nil
}
