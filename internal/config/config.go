// Package config loads geomeasure settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type Config struct {
	Log       Log       `toml:"log" yaml:"log"`
	Globe     Globe     `toml:"globe" yaml:"globe"`
	View      View      `toml:"view" yaml:"view"`
	Input     Input     `toml:"input" yaml:"input"`
	Elevation Elevation `toml:"elevation" yaml:"elevation"`
	Export    Export    `toml:"export" yaml:"export"`
}

// Log configures the rotating log file. An empty File disables logging.
type Log struct {
	File       string `toml:"file" yaml:"file"`
	Level      string `toml:"level" yaml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
}

type Globe struct {
	// Radius of the sphere used for area, metres.
	Radius float64 `toml:"radius" yaml:"radius"`
	// LabelOffset lifts polygon labels above the centroid, metres.
	LabelOffset float64 `toml:"label_offset" yaml:"label_offset"`
}

// View holds the initial map extent as [minLon, minLat, maxLon, maxLat].
type View struct {
	Bounds []float64 `toml:"bounds" yaml:"bounds"`
}

type Input struct {
	DoubleClickMS int `toml:"double_click_ms" yaml:"double_click_ms"`
}

// Elevation selects the terrain source. Without a grid every position sits at
// BaseHeight.
type Elevation struct {
	Grid       string  `toml:"grid" yaml:"grid"`
	BaseHeight float64 `toml:"base_height" yaml:"base_height"`
	TimeoutMS  int     `toml:"timeout_ms" yaml:"timeout_ms"`
}

type Export struct {
	Path string `toml:"path" yaml:"path"`
}

func Default() Config {
	return Config{
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Globe: Globe{
			Radius:      6378137,
			LabelOffset: 10,
		},
		View:      View{Bounds: []float64{-180, -85, 180, 85}},
		Input:     Input{DoubleClickMS: 400},
		Elevation: Elevation{TimeoutMS: 2000},
		Export:    Export{Path: "shapes.geojson"},
	}
}

// Load reads path over the defaults. The format follows the extension.
func Load(path string) (Config, error) {
	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".yaml", ".yml":
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Globe.Radius <= 0 {
		return fmt.Errorf("globe.radius must be positive, got %g", c.Globe.Radius)
	}
	if len(c.View.Bounds) != 4 {
		return fmt.Errorf("view.bounds needs 4 values, got %d", len(c.View.Bounds))
	}
	b := c.View.Bounds
	if b[0] >= b[2] || b[1] >= b[3] {
		return fmt.Errorf("view.bounds inverted: %v", b)
	}
	if b[1] < -90 || b[3] > 90 {
		return fmt.Errorf("view.bounds latitude out of range: %v", b)
	}
	if c.Input.DoubleClickMS < 0 {
		return fmt.Errorf("input.double_click_ms must not be negative")
	}
	if c.Elevation.TimeoutMS < 0 {
		return fmt.Errorf("elevation.timeout_ms must not be negative")
	}
	return nil
}

func (c Config) DoubleClick() time.Duration {
	return time.Duration(c.Input.DoubleClickMS) * time.Millisecond
}

// SampleTimeout bounds one ground sample. Zero means no limit.
func (c Config) SampleTimeout() time.Duration {
	return time.Duration(c.Elevation.TimeoutMS) * time.Millisecond
}
