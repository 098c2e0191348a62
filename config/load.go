package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// FormatFromPath picks the syntax from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
}

// file mirrors Config with optional fields so that a file only overrides
// what it mentions.
type file struct {
	Width       *int    `toml:"width" yaml:"width"`
	Height      *int    `toml:"height" yaml:"height"`
	Metric      *string `toml:"metric" yaml:"metric"`
	MarkerSize  *int    `toml:"marker_size" yaml:"marker_size"`
	MarkerColor *uint8  `toml:"marker_color" yaml:"marker_color"`
	HUD         *bool   `toml:"hud" yaml:"hud"`
	Seeds       []Seed  `toml:"seeds" yaml:"seeds"`
	Random      *Random `toml:"random" yaml:"random"`
}

func (f *file) apply(c *Config) {
	if f.Width != nil {
		c.Width = *f.Width
	}
	if f.Height != nil {
		c.Height = *f.Height
	}
	if f.Metric != nil {
		c.Metric = *f.Metric
	}
	if f.MarkerSize != nil {
		c.MarkerSize = *f.MarkerSize
	}
	if f.MarkerColor != nil {
		c.MarkerColor = *f.MarkerColor
	}
	if f.HUD != nil {
		c.HUD = *f.HUD
	}
	if f.Seeds != nil {
		c.Seeds = f.Seeds
		c.Random = nil
	}
	if f.Random != nil {
		c.Random = f.Random
	}
}

// Parse overlays data onto Default and validates the result. Unknown keys are
// rejected.
func Parse(data []byte, format Format) (Config, error) {
	var f file
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return Config{}, invalid("toml: %v", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, invalid("yaml: %v", err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported format %s", format)
	}

	c := Default()
	f.apply(&c)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
