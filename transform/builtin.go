// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/gogpu/cinema"
)

// Offset places every item at a fixed offset.
func Offset(v cinema.Vec3) *Transform {
	return &Transform{
		Name:             fmt.Sprintf("offset(%g,%g,%g)", v.X, v.Y, v.Z),
		Location:         func(Target) Placement { return At(v) },
		LocationInterval: Static,
	}
}

// Grid lays items out along step, one step per index of dimension dim.
func Grid(dim int, step cinema.Vec3) *Transform {
	return &Transform{
		Name: fmt.Sprintf("grid(%d)", dim),
		Location: func(t Target) Placement {
			i := t.Key().At(dim)
			if i < 0 {
				return Placement{}
			}
			return At(step.Mul(float32(i)))
		},
		LocationInterval: Static,
	}
}

// Turn rotates (Euler radians) the frame of every transform attached
// after it, without moving the item itself.
func Turn(euler cinema.Vec3) *Transform {
	return &Transform{
		Name:             "turn",
		Location:         func(Target) Placement { return Placement{Rotation: euler} },
		LocationInterval: Static,
	}
}

// TimeWindow shows an item only while the logical clock lies in
// [v, v+width), where v is the item's value along dimension dim.
// With width equal to the time step exactly one time slice is shown.
func TimeWindow(dim int, width float64) *Transform {
	return &Transform{
		Name: fmt.Sprintf("time(%d)", dim),
		Skip: func(t Target) bool {
			v := t.Value(dim)
			now := t.Time()
			return now < v || now >= v+width
		},
		SkipInterval: Temporal,
	}
}

// FadeOut darkens items by how far their time value along dim lags the
// logical clock, reaching black after span time units.
func FadeOut(dim int, span float64) *Transform {
	return &Transform{
		Name: fmt.Sprintf("fade(%d)", dim),
		Color: func(t Target) cinema.ColorOp {
			age := t.Time() - t.Value(dim)
			k := float32(1)
			if span > 0 && age > 0 {
				k = float32(1 - age/span)
				if k < 0 {
					k = 0
				}
			}
			return cinema.ColorOp{Mul: cinema.RGBA{R: k, G: k, B: k, A: 1}}
		},
		ColorInterval: Temporal,
	}
}

// Tint applies a constant color adjustment.
func Tint(op cinema.ColorOp) *Transform {
	return &Transform{
		Name:          "tint",
		Color:         func(Target) cinema.ColorOp { return op },
		ColorInterval: Static,
	}
}

// Filter hides items whose index along a dimension is not in an allowed
// set. Changing the set with Set fires a visibility pulse, so attached
// items refresh their cached visibility on their next update.
//
// Set must be called under the owning scene's lock.
type Filter struct {
	*Transform

	dim     int
	allowed map[int]bool
}

// NewFilter creates a filter on dimension dim allowing the given indices.
// A filter with no indices allows everything.
func NewFilter(dim int, indices ...int) *Filter {
	f := &Filter{dim: dim}
	f.allowed = toSet(indices)
	f.Transform = &Transform{
		Name:         fmt.Sprintf("filter(%d)", dim),
		Skip:         f.skip,
		SkipInterval: Triggered,
	}
	return f
}

func (f *Filter) skip(t Target) bool {
	if len(f.allowed) == 0 {
		return false
	}
	return !f.allowed[t.Key().At(f.dim)]
}

// Set replaces the allowed indices and fires a visibility pulse.
func (f *Filter) Set(indices ...int) {
	f.allowed = toSet(indices)
	f.Trigger(Visibility)
}

// Allows reports whether index i passes the filter.
func (f *Filter) Allows(i int) bool {
	return len(f.allowed) == 0 || f.allowed[i]
}

func toSet(indices []int) map[int]bool {
	m := make(map[int]bool, len(indices))
	for _, i := range indices {
		m[i] = true
	}
	return m
}
