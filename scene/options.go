// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/pool"
)

// Defaults for scene configuration.
const (
	// DefaultMaxFrameLoads is the number of new decodes allowed per frame.
	DefaultMaxFrameLoads = 1

	// DefaultPrefetchWindow is how far ahead, in time units, the prefetch
	// pass looks along the time dimension.
	DefaultPrefetchWindow = 1.1

	// DefaultEasing is the gain k of the position easing
	// step = |d|^0.5 * sign(d) * k * dt.
	DefaultEasing = 4

	// DefaultBitmapBudgetMB is the CPU memory budget for decoded bitmaps.
	DefaultBitmapBudgetMB = 512

	// DefaultTextureBudgetMB is the GPU memory budget for textures.
	DefaultTextureBudgetMB = 1024

	// DefaultImageSize is the assumed image edge length, in pixels, used to
	// size pool slots when no explicit size is given.
	DefaultImageSize = 512
)

// Priorities drives the per-layer scores that order eviction.
type Priorities struct {
	// Render is the score of a fully visible, unselected layer.
	Render float64
	// Selected is the score of a fully visible, selected layer.
	Selected float64
	// Prefetch is the flat score of a layer that is about to become
	// visible. It sits above Render so that soon-needed data outcompetes
	// resident layers that cover few pixels.
	Prefetch float64
	// VisibleFloor is the score a visible layer gets before its first
	// occlusion result, so it always outranks invisible layers.
	VisibleFloor float64
}

// DefaultPriorities returns the standard priority weights.
func DefaultPriorities() Priorities {
	return Priorities{
		Render:       1000,
		Selected:     2000,
		Prefetch:     1200,
		VisibleFloor: 1,
	}
}

// Option configures a Scene during creation.
//
// Example:
//
//	sc := scene.New(
//	    scene.WithMemoryBudget(pool.MB(256), pool.MB(512)),
//	    scene.WithPrefetchWindow(2),
//	)
type Option func(*options)

type options struct {
	bitmapBudget   int64
	textureBudget  int64
	imageWidth     int
	imageHeight    int
	ceiling        int
	maxFrameLoads  int
	prefetchWindow float64
	easing         float32
	priorities     Priorities
	extent         cinema.Vec3
	startTime      float64
	decoder        Decoder
	uploader       Uploader
}

func defaultOptions() options {
	return options{
		bitmapBudget:   pool.MB(DefaultBitmapBudgetMB),
		textureBudget:  pool.MB(DefaultTextureBudgetMB),
		imageWidth:     DefaultImageSize,
		imageHeight:    DefaultImageSize,
		ceiling:        pool.DefaultCeiling,
		maxFrameLoads:  DefaultMaxFrameLoads,
		prefetchWindow: DefaultPrefetchWindow,
		easing:         DefaultEasing,
		priorities:     DefaultPriorities(),
		extent:         cinema.V3(0.5, 0.5, 0),
	}
}

// WithMemoryBudget sets the bitmap (CPU) and texture (GPU) budgets in
// bytes. Non-positive values keep the defaults.
func WithMemoryBudget(bitmapBytes, textureBytes int64) Option {
	return func(o *options) {
		if bitmapBytes > 0 {
			o.bitmapBudget = bitmapBytes
		}
		if textureBytes > 0 {
			o.textureBudget = textureBytes
		}
	}
}

// WithImageSize sets the image dimensions used to size pool slots.
func WithImageSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.imageWidth = width
			o.imageHeight = height
		}
	}
}

// WithSlotCeiling caps the number of slots of each pool.
func WithSlotCeiling(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.ceiling = n
		}
	}
}

// WithMaxFrameLoads sets how many new decodes Load may start per frame.
// Zero disables decoding entirely; only cache hits are served.
func WithMaxFrameLoads(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxFrameLoads = n
		}
	}
}

// WithPrefetchWindow sets the look-ahead of the prefetch pass in time units.
func WithPrefetchWindow(window float64) Option {
	return func(o *options) {
		o.prefetchWindow = window
	}
}

// WithEasing sets the position easing gain.
func WithEasing(k float32) Option {
	return func(o *options) {
		if k > 0 {
			o.easing = k
		}
	}
}

// WithPriorities overrides the priority weights.
func WithPriorities(p Priorities) Option {
	return func(o *options) {
		o.priorities = p
	}
}

// WithExtent sets the half-size of every item's bounding box, in item
// units. Images are flat quads by default.
func WithExtent(half cinema.Vec3) Option {
	return func(o *options) {
		o.extent = half
	}
}

// WithStartTime sets the initial logical clock.
func WithStartTime(t float64) Option {
	return func(o *options) {
		o.startTime = t
	}
}

// WithDecoder sets the image decoder. The default reads files from disk.
func WithDecoder(d Decoder) Option {
	return func(o *options) {
		o.decoder = d
	}
}

// WithUploader sets the texture uploader. The default keeps textures in
// CPU memory, which suits headless use.
func WithUploader(u Uploader) Option {
	return func(o *options) {
		o.uploader = u
	}
}
