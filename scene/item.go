// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/gogpu/cinema"
	"github.com/gogpu/cinema/transform"
)

// Item is one renderable entity of the ensemble, bound to a key.
//
// The scheduler keeps two kinds of state on an item. Cached facets
// (logical position, static visibility, static color) are the fold of the
// attached transforms and are recomputed only when those transforms are
// attached, detached or triggered. Volatile facets are evaluated on demand
// on top of the cached ones.
//
// Item accessors read without the scene lock. They are safe only on the
// render goroutine that calls BeginFrame and Load, or inside Locked.
// Other goroutines use Scene.LayerStatus or Stats. Edits go through the
// Scene or a Tx.
type Item struct {
	scene  *Scene
	index  int
	key    transform.Key
	values []float64

	transforms []*transform.Transform
	seen       [][transform.NumFacets]uint64

	position cinema.Vec3
	frame    cinema.Mat4
	animated cinema.Vec3

	baseVisible   bool
	baseColor     cinema.ColorOp
	staticVisible bool
	staticColor   cinema.ColorOp

	selected bool
	visible  bool
	layers   []*Layer
	extent   cinema.Vec3
}

func newItem(s *Scene, index int, key transform.Key, values []float64) *Item {
	return &Item{
		scene:         s,
		index:         index,
		key:           key,
		values:        values,
		frame:         cinema.Identity4(),
		baseVisible:   true,
		baseColor:     cinema.IdentityColor,
		staticVisible: true,
		staticColor:   cinema.IdentityColor,
		extent:        s.opts.extent,
	}
}

// Key returns the item's ensemble key.
func (it *Item) Key() transform.Key {
	return it.key
}

// Value returns the argument value along dimension dim, or 0 when out of range.
func (it *Item) Value(dim int) float64 {
	if dim < 0 || dim >= len(it.values) {
		return 0
	}
	return it.values[dim]
}

// Time returns the scene's logical clock.
func (it *Item) Time() float64 {
	return it.scene.clock.Now()
}

// Index returns the item's position in ensemble order.
func (it *Item) Index() int {
	return it.index
}

// Position returns the logical position.
func (it *Item) Position() cinema.Vec3 {
	return it.position
}

// AnimatedPosition returns the eased position used for drawing.
func (it *Item) AnimatedPosition() cinema.Vec3 {
	return it.animated
}

// World returns the world matrix built from the animated position and the
// accumulated frame.
func (it *Item) World() cinema.Mat4 {
	return cinema.Translation(it.animated).Multiply(it.frame)
}

// Extent returns the half-size of the item's bounding box.
func (it *Item) Extent() cinema.Vec3 {
	return it.extent
}

// StaticVisible returns the cached visibility.
func (it *Item) StaticVisible() bool {
	return it.staticVisible
}

// StaticColor returns the cached color adjustment.
func (it *Item) StaticColor() cinema.ColorOp {
	return it.staticColor
}

// Selected reports whether the item is selected.
func (it *Item) Selected() bool {
	return it.selected
}

// Visible reports the outcome of the item's last visibility test.
func (it *Item) Visible() bool {
	return it.visible
}

// Layers returns the item's layers.
func (it *Item) Layers() []*Layer {
	return it.layers
}

// Transforms returns a copy of the attached transforms in attachment order.
func (it *Item) Transforms() []*transform.Transform {
	out := make([]*transform.Transform, len(it.transforms))
	copy(out, it.transforms)
	return out
}

var _ transform.Target = (*Item)(nil)
