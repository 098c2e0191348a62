// Package config holds the startup configuration of a rendering session.
//
// A Config starts from Default and can be overlaid from a TOML or YAML file.
// Every validation failure wraps voronoi.ErrInvalidConfiguration.
package config

import (
	"fmt"
	"math/rand/v2"

	"voronoi/progressive"
	"voronoi/voronoi"
)

// Seed is one configured seed point.
type Seed struct {
	X     int   `toml:"x" yaml:"x"`
	Y     int   `toml:"y" yaml:"y"`
	Color uint8 `toml:"color" yaml:"color"`
}

// Random asks for Count generated seeds instead of an explicit list. The same
// Seed value always yields the same points.
type Random struct {
	Count int    `toml:"count" yaml:"count"`
	Seed  uint64 `toml:"seed" yaml:"seed"`
}

type Config struct {
	Width  int
	Height int
	Metric string

	MarkerSize  int
	MarkerColor uint8

	// HUD shows the level status line on framebuffer outputs.
	HUD bool

	Seeds  []Seed
	Random *Random
}

var referenceSeeds = []Seed{
	{X: 101, Y: 208, Color: 163},
	{X: 60, Y: 38, Color: 57},
	{X: 253, Y: 150, Color: 11},
	{X: 34, Y: 211, Color: 150},
	{X: 65, Y: 142, Color: 79},
	{X: 306, Y: 63, Color: 210},
	{X: 157, Y: 54, Color: 120},
	{X: 18, Y: 115, Color: 24},
	{X: 199, Y: 76, Color: 17},
	{X: 81, Y: 237, Color: 55},
	{X: 292, Y: 128, Color: 200},
	{X: 283, Y: 49, Color: 178},
	{X: 34, Y: 20, Color: 48},
	{X: 215, Y: 201, Color: 98},
	{X: 56, Y: 76, Color: 36},
	{X: 107, Y: 113, Color: 219},
}

// Default returns the reference session: 320×240, Manhattan distance, 16
// seeds and 10-pixel black markers.
func Default() Config {
	return Config{
		Width:       320,
		Height:      240,
		Metric:      voronoi.Manhattan.String(),
		MarkerSize:  progressive.DefaultMarkerSize,
		MarkerColor: 0,
		Seeds:       append([]Seed(nil), referenceSeeds...),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: "+format+": %w", append(args, voronoi.ErrInvalidConfiguration)...)
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return invalid("size %dx%d", c.Width, c.Height)
	}
	if _, err := c.DistanceMetric(); err != nil {
		return err
	}
	if c.MarkerSize < 0 {
		return invalid("marker size %d", c.MarkerSize)
	}
	if c.Random != nil {
		if c.Random.Count <= 0 {
			return invalid("random seed count %d", c.Random.Count)
		}
		return nil
	}
	if len(c.Seeds) == 0 {
		return invalid("no seeds")
	}
	for i, s := range c.Seeds {
		if s.X < 0 || s.Y < 0 {
			return invalid("seed %d at (%d,%d)", i, s.X, s.Y)
		}
	}
	return nil
}

// DistanceMetric parses the Metric field.
func (c Config) DistanceMetric() (voronoi.Metric, error) {
	m, err := voronoi.ParseMetric(c.Metric)
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return m, nil
}

// SeedPoints returns the seed set for the session. With Random set the
// points are generated inside the surface with non-zero colors, so they never
// blend with the default marker color.
func (c Config) SeedPoints() ([]voronoi.Seed, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if r := c.Random; r != nil {
		rng := rand.New(rand.NewPCG(r.Seed, r.Seed^0x9E3779B97F4A7C15))
		out := make([]voronoi.Seed, r.Count)
		for i := range out {
			out[i] = voronoi.Seed{
				X:     rng.IntN(c.Width),
				Y:     rng.IntN(c.Height),
				Color: uint8(1 + rng.IntN(255)),
			}
		}
		return out, nil
	}
	out := make([]voronoi.Seed, len(c.Seeds))
	for i, s := range c.Seeds {
		out[i] = voronoi.Seed{X: s.X, Y: s.Y, Color: s.Color}
	}
	return out, nil
}

// RendererOptions translates the marker settings.
func (c Config) RendererOptions() []progressive.Option {
	return []progressive.Option{progressive.WithMarker(c.MarkerSize, c.MarkerColor)}
}
