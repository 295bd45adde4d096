// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config reads scene configuration files.
//
// Files are TOML (.toml) or YAML (.yaml, .yml). Unknown keys are rejected
// so typos surface instead of silently falling back to defaults. Paths
// may start with ~ for the user's home directory.
//
//	database = "~/data/cinema/volume.cdb"
//
//	[memory]
//	bitmap_mb = 256
//	texture_mb = 512
//
//	[loader]
//	max_frame_loads = 2
//	prefetch_window = 1.1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/pool"
	"github.com/gogpu/cinema/scene"
)

// Config errors.
var (
	// ErrInvalid is returned for configurations that fail validation.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrFormat is returned for files that are neither TOML nor YAML.
	ErrFormat = errors.New("config: unknown file format")
)

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = "~/.config/cinema/config.toml"

// Config is the on-disk scene configuration.
type Config struct {
	// Database is the root directory of the Cinema database.
	Database string `toml:"database" yaml:"database"`

	Memory     Memory     `toml:"memory" yaml:"memory"`
	Image      Image      `toml:"image" yaml:"image"`
	Loader     Loader     `toml:"loader" yaml:"loader"`
	Priority   Priority   `toml:"priority" yaml:"priority"`
	Playback   Playback   `toml:"playback" yaml:"playback"`
	Simulation Simulation `toml:"simulation" yaml:"simulation"`
}

// Memory holds the pool budgets in megabytes.
type Memory struct {
	BitmapMB    int `toml:"bitmap_mb" yaml:"bitmap_mb"`
	TextureMB   int `toml:"texture_mb" yaml:"texture_mb"`
	SlotCeiling int `toml:"slot_ceiling" yaml:"slot_ceiling"`
}

// Image holds the nominal image size used to size pool slots.
type Image struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// Loader holds the streaming knobs.
type Loader struct {
	MaxFrameLoads  int     `toml:"max_frame_loads" yaml:"max_frame_loads"`
	PrefetchWindow float64 `toml:"prefetch_window" yaml:"prefetch_window"`
	Easing         float32 `toml:"easing" yaml:"easing"`
}

// Priority holds the priority weights.
type Priority struct {
	Render       float64 `toml:"render" yaml:"render"`
	Selected     float64 `toml:"selected" yaml:"selected"`
	Prefetch     float64 `toml:"prefetch" yaml:"prefetch"`
	VisibleFloor float64 `toml:"visible_floor" yaml:"visible_floor"`
}

// Playback holds the logical clock settings.
type Playback struct {
	Start float64 `toml:"start" yaml:"start"`
	Speed float64 `toml:"speed" yaml:"speed"`
}

// Simulation holds the headless renderer settings.
type Simulation struct {
	Frames   int     `toml:"frames" yaml:"frames"`
	FPS      float64 `toml:"fps" yaml:"fps"`
	Viewport int     `toml:"viewport" yaml:"viewport"`
	Orbit    float64 `toml:"orbit" yaml:"orbit"`
	Distance float32 `toml:"distance" yaml:"distance"`
}

// Default returns the built-in configuration.
func Default() *Config {
	pr := scene.DefaultPriorities()
	return &Config{
		Memory: Memory{
			BitmapMB:    scene.DefaultBitmapBudgetMB,
			TextureMB:   scene.DefaultTextureBudgetMB,
			SlotCeiling: pool.DefaultCeiling,
		},
		Image: Image{Width: scene.DefaultImageSize, Height: scene.DefaultImageSize},
		Loader: Loader{
			MaxFrameLoads:  scene.DefaultMaxFrameLoads,
			PrefetchWindow: scene.DefaultPrefetchWindow,
			Easing:         scene.DefaultEasing,
		},
		Priority: Priority{
			Render:       pr.Render,
			Selected:     pr.Selected,
			Prefetch:     pr.Prefetch,
			VisibleFloor: pr.VisibleFloor,
		},
		Playback: Playback{Speed: 1},
		Simulation: Simulation{
			Frames:   120,
			FPS:      60,
			Viewport: 512,
			Orbit:    0.25,
			Distance: 12,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Database != "" {
		if cfg.Database, err = homedir.Expand(cfg.Database); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if !filepath.IsAbs(cfg.Database) {
			cfg.Database = filepath.Join(filepath.Dir(path), cfg.Database)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cinema.Logger().Debug("config: loaded", "path", path)
	return cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err := dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Memory.BitmapMB <= 0 || c.Memory.TextureMB <= 0:
		return fmt.Errorf("%w: memory budgets must be positive", ErrInvalid)
	case c.Memory.SlotCeiling <= 0:
		return fmt.Errorf("%w: slot_ceiling must be positive", ErrInvalid)
	case c.Image.Width <= 0 || c.Image.Height <= 0:
		return fmt.Errorf("%w: image size must be positive", ErrInvalid)
	case c.Loader.MaxFrameLoads < 0:
		return fmt.Errorf("%w: max_frame_loads must not be negative", ErrInvalid)
	case c.Loader.PrefetchWindow < 0:
		return fmt.Errorf("%w: prefetch_window must not be negative", ErrInvalid)
	case c.Loader.Easing <= 0:
		return fmt.Errorf("%w: easing must be positive", ErrInvalid)
	case c.Priority.Render <= 0 || c.Priority.Selected <= 0 || c.Priority.Prefetch <= 0:
		return fmt.Errorf("%w: priority weights must be positive", ErrInvalid)
	case c.Simulation.Frames < 0 || c.Simulation.FPS <= 0 || c.Simulation.Viewport <= 0:
		return fmt.Errorf("%w: simulation frames, fps and viewport out of range", ErrInvalid)
	}
	return nil
}

// Options converts the configuration to scene options.
func (c *Config) Options() []scene.Option {
	return []scene.Option{
		scene.WithMemoryBudget(pool.MB(c.Memory.BitmapMB), pool.MB(c.Memory.TextureMB)),
		scene.WithSlotCeiling(c.Memory.SlotCeiling),
		scene.WithImageSize(c.Image.Width, c.Image.Height),
		scene.WithMaxFrameLoads(c.Loader.MaxFrameLoads),
		scene.WithPrefetchWindow(c.Loader.PrefetchWindow),
		scene.WithEasing(c.Loader.Easing),
		scene.WithPriorities(scene.Priorities{
			Render:       c.Priority.Render,
			Selected:     c.Priority.Selected,
			Prefetch:     c.Priority.Prefetch,
			VisibleFloor: c.Priority.VisibleFloor,
		}),
		scene.WithStartTime(c.Playback.Start),
	}
}
