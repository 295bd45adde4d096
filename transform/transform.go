// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package transform defines the per-item computations that place, hide and
// recolor the images of an ensemble.
//
// A Transform is a bundle of up to three independent facet functions
// (Location, Visibility, Color), each tagged with an Interval that tells
// the scheduler when to re-run it. A facet left nil costs nothing.
// Transforms are shared by many items and must not keep per-item state.
package transform

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gogpu/cinema"
)

// Key is the ordered tuple of per-dimension value indices identifying an
// item within its ensemble.
type Key []int

// String returns the comma-separated form of the key, e.g. "0,3,1".
// Equal keys have equal strings, so it is usable as a map key.
func (k Key) String() string {
	var sb strings.Builder
	for i, v := range k {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Equal reports whether two keys name the same item.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

// At returns the index along dimension dim, or -1 if out of range.
func (k Key) At(dim int) int {
	if dim < 0 || dim >= len(k) {
		return -1
	}
	return k[dim]
}

// Target is the view of an item that facet functions evaluate against.
type Target interface {
	// Key returns the item's ensemble key.
	Key() Key
	// Value returns the raw argument value along dimension dim.
	Value(dim int) float64
	// Time returns the scene's logical clock.
	Time() float64
}

// Placement is the output of a Location facet. Offset is expressed in
// the frame established by the transforms attached before this one;
// Rotation (Euler radians) and Scale establish the frame for those after.
// A zero Scale means no scaling.
type Placement struct {
	Offset   cinema.Vec3
	Rotation cinema.Vec3
	Scale    cinema.Vec3
}

// At creates a Placement that only translates.
func At(offset cinema.Vec3) Placement {
	return Placement{Offset: offset}
}

// Frame returns the linear frame (rotation then scale) the placement
// establishes for later transforms, with non-finite components sanitized.
func (p Placement) Frame() cinema.Mat4 {
	scale := p.Scale.Sanitize()
	if scale == (cinema.Vec3{}) {
		scale = cinema.One
	}
	return cinema.Rotation(p.Rotation.Sanitize()).Multiply(cinema.Scaling(scale))
}

// Transform bundles the three facet functions.
type Transform struct {
	// Name is an optional debug name.
	Name string

	Location         func(Target) Placement
	LocationInterval Interval

	Skip         func(Target) bool
	SkipInterval Interval

	Color         func(Target) cinema.ColorOp
	ColorInterval Interval

	pulses [NumFacets]atomic.Uint64
}

// Interval returns the interval of facet f, or Never if the transform
// does not provide it.
func (t *Transform) Interval(f Facet) Interval {
	switch f {
	case Location:
		if t.Location == nil {
			return Never
		}
		return t.LocationInterval
	case Visibility:
		if t.Skip == nil {
			return Never
		}
		return t.SkipInterval
	case Color:
		if t.Color == nil {
			return Never
		}
		return t.ColorInterval
	default:
		return Never
	}
}

// Trigger fires a pulse for facet f. Every item the transform is attached
// to recomputes its cached facet on its next update.
func (t *Transform) Trigger(f Facet) {
	if f < NumFacets {
		t.pulses[f].Add(1)
	}
}

// Pulse returns the number of pulses fired for facet f so far.
// Items compare it with the value they last consumed.
func (t *Transform) Pulse(f Facet) uint64 {
	if f >= NumFacets {
		return 0
	}
	return t.pulses[f].Load()
}

// Pulses returns the pulse counters of every facet.
func (t *Transform) Pulses() [NumFacets]uint64 {
	var p [NumFacets]uint64
	for i := range p {
		p[i] = t.pulses[i].Load()
	}
	return p
}

// String returns the debug name.
func (t *Transform) String() string {
	if t.Name == "" {
		return "transform"
	}
	return t.Name
}
