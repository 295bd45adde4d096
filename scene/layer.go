// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/google/uuid"

	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/database"
	"github.com/gogpu/cinema/pool"
)

// LayerState is the residency of a layer's data.
type LayerState uint8

// Layer states, in load order.
const (
	// Unloaded layers hold no handle.
	Unloaded LayerState = iota
	// BitmapReady layers hold decoded pixels but no texture.
	BitmapReady
	// TextureReady layers hold a usable texture.
	TextureReady
)

// String returns the state name.
func (s LayerState) String() string {
	switch s {
	case Unloaded:
		return "Unloaded"
	case BitmapReady:
		return "BitmapReady"
	case TextureReady:
		return "TextureReady"
	default:
		return "Unknown"
	}
}

// Layer is one decodable image of an item. It borrows at most one bitmap
// and one texture slot and keeps the pointers of slots it released, so a
// quick reload can reclaim its own data without decoding again.
//
// Layer accessors read without the scene lock and are not safe to call
// while another goroutine drives the scene. Off the render goroutine, use
// Scene.LayerStatus or read inside Locked.
type Layer struct {
	// ID tags the slots the layer holds or released.
	ID uuid.UUID

	item  *Item
	index int
	name  string
	files database.Files

	bitmap     *cinema.Bitmap
	bitmapPtr  pool.Pointer
	texture    *Texture
	texturePtr pool.Pointer

	active     bool
	priority   float64
	prefetched uint64 // frame+1 of the last prefetch mark
	failures   int
}

func newLayer(it *Item, index int, src database.Source) *Layer {
	return &Layer{
		ID:     uuid.New(),
		item:   it,
		index:  index,
		name:   src.Name,
		files:  src.Files,
		active: true,
	}
}

// Item returns the owning item.
func (l *Layer) Item() *Item { return l.item }

// Name returns the layer name, empty for single-layer items.
func (l *Layer) Name() string { return l.name }

// Files returns the layer's source files.
func (l *Layer) Files() database.Files { return l.files }

// Active reports whether current filters include the layer in compositing.
func (l *Layer) Active() bool { return l.active }

// Priority returns the current priority score.
func (l *Layer) Priority() float64 { return l.priority }

// Failures returns the number of failed decodes and uploads.
func (l *Layer) Failures() int { return l.failures }

// Bitmap returns the decoded pixels, or nil.
func (l *Layer) Bitmap() *cinema.Bitmap { return l.bitmap }

// Texture returns the texture, or nil when the layer is not TextureReady.
func (l *Layer) Texture() *Texture { return l.texture }

// State returns the layer's residency.
func (l *Layer) State() LayerState {
	switch {
	case l.texture != nil:
		return TextureReady
	case l.bitmap != nil:
		return BitmapReady
	default:
		return Unloaded
	}
}

// ranks reports whether l sorts before o in eviction order: lower
// priority first, ties broken by creation order.
func (l *Layer) ranks(o *Layer) bool {
	if l.priority != o.priority {
		return l.priority < o.priority
	}
	return l.index < o.index
}
